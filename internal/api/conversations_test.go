package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/maplecrm/records-api/internal/perm"
)

func createConversation(t *testing.T, env *testEnv, secret, subject string) conversationDTO {
	t.Helper()
	rec := env.do(t, http.MethodPost, "/v1/conversations", secret, map[string]string{
		"subject": subject,
		"channel": "email",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create conversation status = %d (body %q)", rec.Code, rec.Body.String())
	}
	var conv conversationDTO
	decodeBody(t, rec, &conv)
	return conv
}

func TestConversationLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ownerSecret := env.secrets[perm.RoleOwner]

	conv := createConversation(t, env, ownerSecret, "Renewal question")
	if conv.Status != "open" {
		t.Errorf("status = %q, want %q", conv.Status, "open")
	}

	rec := env.do(t, http.MethodGet, "/v1/conversations/"+conv.ID, ownerSecret, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}

	// Closing needs inbox manage; operators top out at send.
	rec = env.do(t, http.MethodPatch, "/v1/conversations/"+conv.ID, env.secrets[perm.RoleOperator],
		map[string]string{"status": "closed"})
	wantError(t, rec, http.StatusForbidden, ErrCodeForbidden)

	rec = env.do(t, http.MethodPatch, "/v1/conversations/"+conv.ID, ownerSecret,
		map[string]string{"status": "closed"})
	if rec.Code != http.StatusOK {
		t.Fatalf("close status = %d (body %q)", rec.Code, rec.Body.String())
	}
	var closed conversationDTO
	decodeBody(t, rec, &closed)
	if closed.Status != "closed" {
		t.Errorf("status = %q, want %q", closed.Status, "closed")
	}
}

func TestCreateConversationValidation(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/v1/conversations", env.secrets[perm.RoleOwner],
		map[string]string{"channel": "email"})
	wantError(t, rec, http.StatusBadRequest, ErrCodeInvalidRequest)
}

// TestMessages covers posting to a thread and reading it back with
// direction filtering.
func TestMessages(t *testing.T) {
	env := newTestEnv(t)
	opSecret := env.secrets[perm.RoleOperator]

	conv := createConversation(t, env, env.secrets[perm.RoleOwner], "Support thread")
	msgPath := "/v1/conversations/" + conv.ID + "/messages"

	for i := 0; i < 3; i++ {
		rec := env.do(t, http.MethodPost, msgPath, opSecret, map[string]string{
			"body": fmt.Sprintf("outbound %d", i),
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("post message status = %d (body %q)", rec.Code, rec.Body.String())
		}
		var msg messageDTO
		decodeBody(t, rec, &msg)
		if msg.Direction != "outbound" {
			t.Errorf("direction = %q, want default %q", msg.Direction, "outbound")
		}
		if msg.AuthorID != env.actors[perm.RoleOperator].ID {
			t.Errorf("author_id = %q, want caller %q", msg.AuthorID, env.actors[perm.RoleOperator].ID)
		}
	}
	rec := env.do(t, http.MethodPost, msgPath, opSecret, map[string]string{
		"body":      "customer reply",
		"direction": "inbound",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("post inbound status = %d", rec.Code)
	}

	var p struct {
		Items []messageDTO `json:"items"`
	}

	rec = env.do(t, http.MethodGet, msgPath, opSecret, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d (body %q)", rec.Code, rec.Body.String())
	}
	decodeBody(t, rec, &p)
	if len(p.Items) != 4 {
		t.Fatalf("got %d messages, want 4", len(p.Items))
	}

	rec = env.do(t, http.MethodGet, msgPath+"?direction=inbound", opSecret, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("filtered list status = %d", rec.Code)
	}
	decodeBody(t, rec, &p)
	if len(p.Items) != 1 || p.Items[0].Body != "customer reply" {
		t.Errorf("direction=inbound returned %+v, want only the customer reply", p.Items)
	}
}

func TestMessageValidation(t *testing.T) {
	env := newTestEnv(t)
	secret := env.secrets[perm.RoleOwner]
	conv := createConversation(t, env, secret, "thread")
	msgPath := "/v1/conversations/" + conv.ID + "/messages"

	rec := env.do(t, http.MethodPost, msgPath, secret, map[string]string{"direction": "inbound"})
	wantError(t, rec, http.StatusBadRequest, ErrCodeInvalidRequest)

	rec = env.do(t, http.MethodPost, msgPath, secret, map[string]string{
		"body":      "hi",
		"direction": "sideways",
	})
	wantError(t, rec, http.StatusBadRequest, ErrCodeInvalidRequest)
}

// TestMessagesUnknownConversation verifies the thread is gated on the
// conversation existing in the caller's tenant.
func TestMessagesUnknownConversation(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/v1/conversations/01HUNKNOWN00000000000000AA/messages",
		env.secrets[perm.RoleOwner], nil)
	wantError(t, rec, http.StatusNotFound, ErrCodeNotFound)
}
