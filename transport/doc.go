// Package transport provides the HTTP plumbing used by the client.
//
// # HTTP Client
//
// NewHTTPClient builds an *http.Client with a pooled transport suited
// to long-lived API usage:
//
//	httpClient := transport.NewHTTPClient(
//	    transport.WithTimeout(60*time.Second),
//	    transport.WithMaxIdleConnsPerHost(16),
//	)
//
// The Doer interface abstracts request execution so tests can stand in
// for the network:
//
//	type Doer interface {
//	    Do(req *http.Request) (*http.Response, error)
//	}
//
// RoundTripFunc adapts a plain function into an http.RoundTripper for
// the same purpose.
//
// # Server-Sent Events
//
// EventReader consumes a text/event-stream response body one frame at
// a time, handling multi-line data, comment keepalives, and the [DONE]
// sentinel that terminates chat-completions streams:
//
//	er := transport.NewEventReader(resp.Body)
//	defer er.Close()
//	for {
//	    ev, err := er.Next()
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	    // decode ev.Data
//	}
package transport
