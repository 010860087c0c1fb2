// Package dsl implements parley's rule language: a lexer, a recursive
// descent parser producing an immutable Program, and a two-phase
// interpreter that runs one conversational turn at a time.
//
// # Language Overview
//
// A script is a list of intents. Each intent holds ordered rules of the form
// "when <condition> then <action>;":
//
//	// logistics.parley
//	INTENT logistics {
//	  when contains "单号" then set topic = "tracking";
//	  when contains "单号" then reply "请提供您的单号以便查询";
//	  when always then reply "请描述您的物流问题";
//	}
//
// Conditions:
//
//	intent == NAME     - the session's current intent is NAME
//	contains "text"    - the utterance contains text (case-sensitive)
//	always             - unconditionally true
//
// Actions:
//
//	reply "text"       - reply; {name} is replaced with variable name
//	set NAME = "text"  - assign a session variable
//	goto NAME          - switch the session's intent for the next turn
//
// String literals use Go escapes (\" \\ \n \t \uXXXX, plus \'). Comments run from //
// to the end of the line. Intent names must be unique.
//
// # Using the DSL
//
// Parse a script and step a session:
//
//	prog, err := dsl.NewParser().ParseFile("logistics.parley")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	interp := dsl.NewInterpreter(prog)
//	session := dsl.NewSession()
//	session.CurrentIntent = "logistics"
//
//	reply, err := interp.Step(session, "我的单号是123")
//
// # Step Semantics
//
// A step looks up the session's current intent and makes two passes over
// its rules. The first applies every matching set and goto. The second
// returns the first matching reply. If none matches, the previous reply is
// repeated, or a fixed "not understood" reply is used when there is none.
// An intent missing from the program yields a fixed reply and leaves the
// session untouched.
//
// Choosing the current intent between turns is the caller's job; see the
// intent package.
package dsl
