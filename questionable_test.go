package main

import (
	"testing"
	"time"
)

func testItem(id int64, title, desc, createdBy string) WorkItem {
	return WorkItem{
		ID:               id,
		Title:            title,
		Description:      desc,
		CreatedBy:        createdBy,
		State:            "Active",
		CreatedDate:      time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		StateChangedDate: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestDetectQuestionablePartitionsInput(t *testing.T) {
	items := []WorkItem{
		testItem(1, "Crash in kernel", "BSOD when resuming from sleep, bugcheck 0x9F, dump attached below with full stack", "Alice Smith"),
		testItem(2, "Broken", "", "Bob Jones"),
		testItem(3, "Slow boot", "short", "Carol White"),
		testItem(4, "Leak", "Memory usage grows steadily while the indexing service runs overnight", "deploy-service"),
	}

	questionable, actionable := DetectQuestionable(items, nil)

	if len(questionable)+len(actionable) != len(items) {
		t.Fatalf("partition lost items: %d + %d != %d", len(questionable), len(actionable), len(items))
	}
	seen := make(map[int64]bool)
	for _, qi := range questionable {
		if seen[qi.Item.ID] {
			t.Fatalf("item %d appears twice", qi.Item.ID)
		}
		seen[qi.Item.ID] = true
	}
	for _, item := range actionable {
		if seen[item.ID] {
			t.Fatalf("item %d in both outputs", item.ID)
		}
		seen[item.ID] = true
	}

	// Order preserved within each part.
	if questionable[0].Item.ID != 2 || questionable[1].Item.ID != 3 || questionable[2].Item.ID != 4 {
		t.Fatalf("questionable order not preserved: %+v", questionable)
	}
	if len(actionable) != 1 || actionable[0].ID != 1 {
		t.Fatalf("expected only item 1 actionable, got %+v", actionable)
	}
}

func TestFlagItemRules(t *testing.T) {
	hasFlag := func(flags []QuestionableFlag, kind FlagKind) bool {
		for _, f := range flags {
			if f.Kind == kind {
				return true
			}
		}
		return false
	}

	t.Run("empty description", func(t *testing.T) {
		flags := flagItem(testItem(1, "Title", "   ", "Alice Smith"), nil)
		if !hasFlag(flags, FlagEmptyDescription) {
			t.Fatalf("expected empty-description flag, got %+v", flags)
		}
	})

	t.Run("short description", func(t *testing.T) {
		flags := flagItem(testItem(1, "Title", "too short", "Alice Smith"), nil)
		if !hasFlag(flags, FlagShortDescription) {
			t.Fatalf("expected short-description flag, got %+v", flags)
		}
		if hasFlag(flags, FlagEmptyDescription) {
			t.Fatalf("short description must not also be flagged empty")
		}
	})

	t.Run("broken reference phrase", func(t *testing.T) {
		flags := flagItem(testItem(1, "Title", "Repro fails intermittently, see attachment for the full trace", "Alice Smith"), nil)
		if !hasFlag(flags, FlagBrokenReference) {
			t.Fatalf("expected broken-reference flag, got %+v", flags)
		}
	})

	t.Run("malformed link", func(t *testing.T) {
		flags := flagItem(testItem(1, "Title", "Details captured at https://internalhost without a valid domain suffix here", "Alice Smith"), nil)
		if !hasFlag(flags, FlagBrokenReference) {
			t.Fatalf("expected broken-reference flag for malformed link, got %+v", flags)
		}
	})

	t.Run("well formed link passes", func(t *testing.T) {
		flags := flagItem(testItem(1, "Title", "Full trace uploaded to https://logs.example.com/trace/123 for this failure", "Alice Smith"), nil)
		if hasFlag(flags, FlagBrokenReference) {
			t.Fatalf("did not expect broken-reference flag, got %+v", flags)
		}
	})

	t.Run("multiple flags union", func(t *testing.T) {
		flags := flagItem(testItem(1, "Title", "", "build-bot"), nil)
		if !hasFlag(flags, FlagEmptyDescription) || !hasFlag(flags, FlagBotCreated) {
			t.Fatalf("expected empty + bot flags, got %+v", flags)
		}
	})

	t.Run("delegated bot judgment wins over name heuristic", func(t *testing.T) {
		item := testItem(7, "Title", "A perfectly reasonable description of the failure with full detail", "Alice Smith")
		flags := flagItem(item, map[int64]Decision{7: {Actionable: true, BotAuthor: true}})
		if !hasFlag(flags, FlagBotCreated) {
			t.Fatalf("expected bot flag from delegated judgment, got %+v", flags)
		}

		bot := testItem(8, "Title", "A perfectly reasonable description of the failure with full detail", "build-bot")
		flags = flagItem(bot, map[int64]Decision{8: {Actionable: true}})
		if hasFlag(flags, FlagBotCreated) {
			t.Fatalf("delegated person judgment should suppress name heuristic, got %+v", flags)
		}
	})

	t.Run("delegated non-actionable verdict flags the item", func(t *testing.T) {
		item := testItem(9, "Something feels off", "the machine seems generally unhappy lately and misbehaves now and then", "Alice Smith")
		flags := flagItem(item, map[int64]Decision{9: {Category: CategoryUncategorized, Actionable: false}})
		if !hasFlag(flags, FlagNotActionable) {
			t.Fatalf("expected non-actionable flag from delegated verdict, got %+v", flags)
		}

		flags = flagItem(item, map[int64]Decision{9: {Category: CategoryUncategorized, Actionable: true}})
		if len(flags) != 0 {
			t.Fatalf("actionable verdict on a well-described item must not flag, got %+v", flags)
		}
	})
}

func TestLooksLikeBotName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"build-bot", true},
		{"CI System", true},
		{"auto-deploy", true},
		{"webhook handler", true},
		{"user123", true},
		{"admin01", true},
		{"Alice Smith", false},
		{"jane.doe@example.com", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := looksLikeBotName(tt.name); got != tt.want {
			t.Errorf("looksLikeBotName(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
