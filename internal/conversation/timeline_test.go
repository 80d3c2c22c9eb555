package conversation

import (
	"testing"
	"time"

	"github.com/starford/unpack/internal/models"
)

func TestTimeline_ConfirmReplacesByClientID(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tl := NewTimeline([]models.Message{{ID: "m1", Role: models.RoleAI, Content: "hi", Status: models.StatusConfirmed}})

	tl.AddPending("t1", "c1", "same words", now)
	tl.AddPending("t1", "c2", "same words", now)

	if !tl.Confirm(models.Message{ID: "m3", ClientID: "c2", Role: models.RoleUser, Content: "same words"}) {
		t.Fatal("expected pending c2 to be replaced")
	}
	msgs := tl.Messages()
	if len(msgs) != 3 {
		t.Fatalf("len = %d, want 3", len(msgs))
	}
	if !msgs[1].Pending() || msgs[1].ClientID != "c1" {
		t.Errorf("c1 should still be pending: %+v", msgs[1])
	}
	if msgs[2].ID != "m3" || msgs[2].Status != models.StatusConfirmed {
		t.Errorf("c2 not confirmed in place: %+v", msgs[2])
	}
}

func TestTimeline_ConfirmWithoutPendingAppends(t *testing.T) {
	tl := NewTimeline(nil)
	if tl.Confirm(models.Message{ID: "a", Role: models.RoleAI}) {
		t.Error("nothing pending, should report false")
	}
	if len(tl.Messages()) != 1 {
		t.Error("reply should be appended")
	}
}

func TestTimeline_Drop(t *testing.T) {
	tl := NewTimeline(nil)
	tl.AddPending("t1", "c1", "x", time.Now())
	tl.Drop("c1")
	if len(tl.Messages()) != 0 {
		t.Error("pending message not dropped")
	}
}

func TestStateOf(t *testing.T) {
	if StateOf(nil) != Unseeded {
		t.Error("empty history should be unseeded")
	}
	ai := models.Message{Role: models.RoleAI}
	user := models.Message{Role: models.RoleUser}
	if StateOf([]models.Message{ai}) != AwaitingUser {
		t.Error("ai last should await user")
	}
	if StateOf([]models.Message{ai, user}) != AwaitingAI {
		t.Error("user last should await ai")
	}
}
