package identity

import (
	"context"
	"testing"
)

func TestWithActorAndActorFromContext(t *testing.T) {
	ctx := WithActor(context.Background(), Actor{ID: "user-1", Role: RoleRM})

	got, ok := ActorFromContext(ctx)
	if !ok {
		t.Fatalf("expected actor to be present")
	}
	if got.ID != "user-1" || got.Role != RoleRM {
		t.Fatalf("unexpected actor %+v", got)
	}
	if got.IsAdmin() {
		t.Fatalf("RM actor must not be admin")
	}
}

func TestActorFromContext_EmptyOrMissing(t *testing.T) {
	if _, ok := ActorFromContext(context.Background()); ok {
		t.Fatalf("expected missing actor to return false")
	}

	ctx := context.WithValue(context.Background(), actorKey, "not-an-actor")
	if _, ok := ActorFromContext(ctx); ok {
		t.Fatalf("expected wrong type to return false")
	}

	ctx = WithActor(context.Background(), Actor{Role: RoleAdmin})
	if _, ok := ActorFromContext(ctx); ok {
		t.Fatalf("expected actor without id to return false")
	}
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		raw     string
		want    Role
		wantErr bool
	}{
		{"ADMIN", RoleAdmin, false},
		{"rm", RoleRM, false},
		{" Rm ", RoleRM, false},
		{"owner", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseRole(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}
}
