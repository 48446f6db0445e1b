package app_test

import (
	"testing"
	"time"

	"evaluation-console/internal/app"
	"evaluation-console/internal/domain"
)

func TestNotifierQueueAndDismiss(t *testing.T) {
	n := app.NewNotifier(2, nil)
	first := n.Push(app.NoticeInfo, "one")
	n.Push(app.NoticeInfo, "two")
	n.Push(app.NoticeInfo, "three")

	pending := n.Pending()
	if len(pending) != 2 || pending[0].Message != "two" {
		t.Fatalf("expected oldest notice evicted, got %+v", pending)
	}
	if n.Dismiss(first.ID) {
		t.Fatalf("evicted notice should not be dismissable")
	}
	if !n.Dismiss(pending[0].ID) || len(n.Pending()) != 1 {
		t.Fatalf("expected dismiss to remove notice")
	}
}

func TestNotifierPushErrorCarriesFields(t *testing.T) {
	n := app.NewNotifier(10, nil)
	notice := n.PushError(&domain.ValidationError{Fields: map[string]string{"enonce": "requis"}})
	if notice.Kind != app.NoticeError || notice.Fields["enonce"] != "requis" {
		t.Fatalf("unexpected notice %+v", notice)
	}

	notice = n.PushError(&domain.APIError{Status: 500})
	if notice.Message != domain.DefaultErrorMessage {
		t.Fatalf("expected default message, got %q", notice.Message)
	}
}

func TestNotifierSubscribe(t *testing.T) {
	n := app.NewNotifier(10, nil)
	ch, cancel := n.Subscribe()
	defer cancel()

	n.Push(app.NoticeSuccess, "Question enregistrée")
	select {
	case got := <-ch:
		if got.Message != "Question enregistrée" || got.ID == "" {
			t.Fatalf("unexpected notice %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatalf("no notice received")
	}

	cancel()
	cancel()
	if _, ok := <-ch; ok {
		t.Fatalf("expected channel closed after cancel")
	}
}
