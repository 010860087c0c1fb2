package dsl

import "testing"

// ---------- Integration: Parser → Interpreter over several turns ----------

const supportScript = `
INTENT refund {
  when contains "退票" then set action = "cancel";
  when contains "改签" then set action = "reschedule";
  when contains "订单" then goto refund_order;
  when contains "退票" then reply "好的，为您办理{action}，请提供订单号";
  when contains "改签" then reply "好的，为您办理{action}，请提供订单号";
}

INTENT refund_order {
  when contains "E" then set order = "received";
  when contains "E" then reply "订单已收到，处理中（{action}）";
  when always then reply "请提供以 E 开头的订单号";
}
`

func TestConversationAcrossIntents(t *testing.T) {
	prog := mustParse(t, supportScript)
	interp := NewInterpreter(prog)
	s := sessionAt("refund")

	turns := []struct {
		utterance string
		reply     string
		outcome   Outcome
		intent    string
	}{
		{"我想退票", "好的，为您办理cancel，请提供订单号", OutcomeReplied, "refund"},
		{"嗯", "好的，为您办理cancel，请提供订单号", OutcomeCarryOver, "refund"},
		{"订单在这", "好的，为您办理cancel，请提供订单号", OutcomeCarryOver, "refund_order"},
		{"还没有", "请提供以 E 开头的订单号", OutcomeReplied, "refund_order"},
		{"E12345", "订单已收到，处理中（cancel）", OutcomeReplied, "refund_order"},
	}

	for i, turn := range turns {
		res, err := interp.Evaluate(s, turn.utterance)
		if err != nil {
			t.Fatalf("turn %d: Evaluate() error: %v", i, err)
		}
		if res.Reply != turn.reply {
			t.Errorf("turn %d: reply = %q, want %q", i, res.Reply, turn.reply)
		}
		if res.Outcome != turn.outcome {
			t.Errorf("turn %d: outcome = %v, want %v", i, res.Outcome, turn.outcome)
		}
		if s.CurrentIntent != turn.intent {
			t.Errorf("turn %d: intent = %q, want %q", i, s.CurrentIntent, turn.intent)
		}
	}

	if got := s.GetVar("order"); got != "received" {
		t.Errorf("var order = %q, want %q", got, "received")
	}
}

func TestSharedProgramIndependentSessions(t *testing.T) {
	prog := mustParse(t, supportScript)
	interp := NewInterpreter(prog)

	a := sessionAt("refund")
	b := sessionAt("refund")

	if _, err := interp.Step(a, "退票"); err != nil {
		t.Fatal(err)
	}
	if _, err := interp.Step(b, "改签"); err != nil {
		t.Fatal(err)
	}

	if a.GetVar("action") != "cancel" || b.GetVar("action") != "reschedule" {
		t.Errorf("sessions leaked state: a=%v b=%v", a.Vars, b.Vars)
	}
}
