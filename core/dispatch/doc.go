// Package dispatch sends admission-controlled requests to generation
// servers.
//
// A Dispatcher runs one request to a terminal state:
//
//	Idle -> [AdmissionPending -> AdmissionGranted | AdmissionFailed]
//	     -> ResolvingCredential -> NoCredential | Attempting
//	     -> Succeeded | Failed
//
// Generation-class operations first hold a slot from the shared allocator
// (see package admission). The credential is then resolved (see package
// credential) and the request is POSTed with a bearer token. Every attempt
// is written to the log store; a rejected personal credential raises the
// personalTokenFailed fallback signal.
//
// Failures are typed: *AdmissionError, *MissingCredentialError,
// *RemoteCallError and *ExhaustedCredentialsError. Their messages are meant
// for direct display.
//
// Usage example:
//
//	gate := admission.NewGate(alloc, 0, log)
//	d, err := dispatch.NewDispatcher(cfg, gate, identity, log)
//	if err != nil {
//	        return err
//	}
//	d.SetLogStore(store)
//	res, err := d.Dispatch(ctx, dispatch.Request{
//	        Endpoint:  "https://gen.example.com/v1/generate",
//	        Operation: "generate",
//	        Body:      body,
//	})
package dispatch
