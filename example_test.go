package parley

import (
	"testing"

	"github.com/everydev1618/parley/dsl"
	"github.com/everydev1618/parley/intent"
)

func TestExampleScript(t *testing.T) {
	loader := dsl.NewLoader("examples/support.parley")
	prog, err := loader.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if warns := dsl.Lint(prog); len(warns) > 0 {
		t.Errorf("Lint() = %v, want no warnings", warns)
	}

	rules, err := intent.LoadKeywordRules("examples/keywords.yaml")
	if err != nil {
		t.Fatalf("LoadKeywordRules() error: %v", err)
	}
	conv := NewConversation(loader, intent.NewKeywordRouter(rules...))

	turns := []struct {
		utterance string
		reply     string
	}{
		{"你好", "您好，请问有什么可以帮您？可以咨询物流、退票或教务问题"},
		{"我的包裹丢了", "请描述您的物流问题"},
		{"E778", "已为您登记丢件理赔，状态：filed"},
		{"我要改签", "好的，为您办理改签，请提供订单号"},
		{"订单 E1", "好的，为您办理改签，请提供订单号"},
		{"好了吗", "订单已收到，改签处理中"},
		{"成绩怎么查", "成绩可在教务系统的成绩查询页面查看"},
	}
	for i, turn := range turns {
		res, err := conv.Turn(t.Context(), turn.utterance)
		if err != nil {
			t.Fatalf("turn %d: Turn() error: %v", i, err)
		}
		if res.Reply != turn.reply {
			t.Errorf("turn %d (%s): reply = %q, want %q", i, turn.utterance, res.Reply, turn.reply)
		}
	}
}
