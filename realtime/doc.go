// Package realtime provides a WebSocket client for realtime model
// sessions.
//
// A session is opened with Dial and configured with UpdateSession.
// Text goes in with SendText, the model is prompted with
// CreateResponse, and everything the server says back arrives on the
// Events channel:
//
//	session, err := realtime.Dial(ctx,
//		realtime.WithAPIKey(os.Getenv("OPENAI_API_KEY")),
//		realtime.WithModel("gpt-4o-realtime-preview"),
//		realtime.WithHeader("OpenAI-Beta", "realtime=v1"),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer session.Close()
//
//	err = session.UpdateSession(ctx, realtime.SessionConfig{
//		Instructions:   "Answer with JSON only.",
//		Modalities:     []string{"text"},
//		ResponseFormat: realtime.SchemaFormat("reply", replySchema),
//	})
//
//	session.SendText(ctx, "What is the capital of Norway?")
//	session.CreateResponse(ctx)
//
//	for ev := range session.Events() {
//		switch ev.Type {
//		case realtime.EventTextDelta:
//			fmt.Print(ev.Delta)
//		case realtime.EventResponseDone:
//			return
//		}
//	}
//
// The Events channel closes when the connection ends, whether by
// Close, a server hangup, or a network failure. Event types this
// package does not model are still delivered; their full payload is
// available on Event.Raw.
package realtime
