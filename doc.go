// Package parley runs scripted conversations written in a small rule
// language.
//
// parley provides:
//
//   - A rule DSL with a strict parser and a two-phase interpreter (package dsl)
//   - Intent routing by keyword table or chat model (package intent)
//   - Conversations that combine routing, intent stickiness and the script
//   - An HTTP session service with transcripts and a Telegram bot (package serve)
//   - The parley command line tool (cmd/parley)
//
// # Quick Start
//
// Load a script and talk to it:
//
//	prog, err := dsl.NewParser().ParseFile("support.parley")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	conv := parley.NewConversation(parley.StaticProgram(prog), intent.NewKeywordRouter())
//
//	res, err := conv.Turn(ctx, "我的快递到哪了")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.Reply)
//
// # Intent Stickiness
//
// Each turn is first classified into a label. A specific label switches the
// conversation to the intent of that name; the fallback label leaves the
// current intent alone, so small talk in the middle of a refund does not
// lose the refund context. See intent.Stick.
//
// # Configuration
//
// LoadConfig reads ~/.parley/config.yaml (PARLEY_HOME moves the directory)
// and then applies environment overrides such as PARLEY_ROUTER,
// OPENAI_API_KEY and TELEGRAM_BOT_TOKEN:
//
//	router:
//	  backend: openai
//	  model: gpt-4o-mini
//	  timeout: 20s
//	serve:
//	  addr: :3001
//	  session_ttl: 30m
//	log:
//	  level: debug
package parley
