/*
Package client implements the outbound contract with the processing and
generation service.

# Endpoints

  - POST /api/process   multipart field "file", returns text or a profile
  - POST /api/generate  JSON {text, hints}, returns profile and forms
  - POST /api/extract   multipart field "file", returns source name and text
  - GET  /health        readiness probe

# Errors

Every failure is returned as *types.ServiceError. A non-2xx response keeps
its body as the message, untouched. Transport failures have Status 0. A 2xx
response that is not valid JSON reports the decode error.

No retry is attempted and no timeout is applied unless Options.Timeout is
set; cancellation is only possible through the caller's context.

# Example Usage

	c, err := client.New(client.Options{BaseURL: "http://localhost:8000"})
	if err != nil {
		return err
	}
	doc, err := types.LoadDocument("passport.pdf")
	if err != nil {
		return err
	}
	result, err := c.Process(ctx, doc)
*/
package client
