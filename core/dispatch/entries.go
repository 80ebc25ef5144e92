package dispatch

import (
	"unicode/utf8"

	"github.com/tidwall/gjson"
)

const maxLoggedText = 2000

// requestFields pulls the model and prompt out of a request body. The
// prompt is the "prompt" field or the content of the last chat message.
func requestFields(body []byte) (modelName, prompt string) {
	if !gjson.ValidBytes(body) {
		return "", ""
	}
	modelName = gjson.GetBytes(body, "model").String()
	if p := gjson.GetBytes(body, "prompt"); p.Exists() {
		return modelName, truncate(p.String())
	}
	msgs := gjson.GetBytes(body, "messages").Array()
	if len(msgs) > 0 {
		prompt = msgs[len(msgs)-1].Get("content").String()
	}
	return modelName, truncate(prompt)
}

// responseFields extracts a readable output and the token count from a
// successful response.
func responseFields(payload []byte) (output string, tokens int) {
	res := gjson.ParseBytes(payload)
	for _, path := range []string{"output", "result", "text", "choices.0.message.content", "choices.0.text"} {
		if r := res.Get(path); r.Exists() && r.Type == gjson.String {
			output = r.Str
			break
		}
	}
	if output == "" {
		output = res.Raw
	}
	for _, path := range []string{"usage.total_tokens", "usage.totalTokens", "token_count", "tokenCount"} {
		if r := res.Get(path); r.Exists() {
			tokens = int(r.Int())
			break
		}
	}
	return truncate(output), tokens
}

func truncate(s string) string {
	if len(s) <= maxLoggedText {
		return s
	}
	cut := maxLoggedText
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
