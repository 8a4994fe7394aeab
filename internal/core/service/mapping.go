package service

import (
	"time"

	"github.com/rjtc/pms-sync/internal/core/domain"
	"github.com/rjtc/pms-sync/internal/core/ports"
)

// Remote paths. The path segments and field names below are the wire
// contract shared with every other client of the store.
func taskPath(id string) string        { return "Tasks/" + id }
func taskMembersPath(id string) string { return "Tasks/" + id + "/members" }
func userPath(id string) string        { return "Users/" + id }
func userTasksPath(id string) string   { return "Users/" + id + "/tasks" }

// taskFromRecord maps a Tasks/{id} record to a hydrated Task. A nil record
// (no backing document) still yields a hydrated task; every optional field
// stays unset. Fields with unexpected types are treated as absent.
func taskFromRecord(id string, rec ports.Record) *domain.Task {
	t := domain.NewTaskStub(id)
	t.Hydrated = true
	t.Members = []string{}
	if rec == nil {
		return t
	}

	if s, ok := rec["title"].(string); ok {
		t.Title = &s
	}
	if s, ok := rec["description"].(string); ok {
		t.Description = &s
	}
	if ts, ok := asEpochSeconds(rec["start date"]); ok {
		d := time.Unix(ts, 0).UTC()
		t.StartDate = &d
	}
	if ts, ok := asEpochSeconds(rec["due date"]); ok {
		d := time.Unix(ts, 0).UTC()
		t.DueDate = &d
	}
	if s, ok := rec["projectID"].(string); ok {
		t.ProjectID = &s
	}
	if b, ok := rec["isCompleted"].(bool); ok {
		t.Completion = domain.CompletionFromBool(b)
	}
	if members, ok := rec["members"].(map[string]any); ok {
		for memberID := range members {
			t.Members = append(t.Members, memberID)
		}
	}

	return t
}

// sessionFromRecord maps a Users/{id} record to a Session. An absent role
// field resolves to RoleNone: the user authenticated but never finished role
// selection.
func sessionFromRecord(id string, rec ports.Record) *domain.Session {
	sess := &domain.Session{UserID: id, Role: domain.RoleNone}
	if s, ok := rec["email"].(string); ok {
		sess.Email = s
	}
	if s, ok := rec["name"].(string); ok {
		sess.Name = s
	}
	if s, ok := rec["profile photo"].(string); ok {
		sess.PhotoURL = s
	}
	if s, ok := rec["role"].(string); ok {
		sess.Role = domain.ParseRole(s)
	}
	return sess
}

// asEpochSeconds accepts the numeric types the store codec may hand back for
// an epoch-seconds field.
func asEpochSeconds(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int64:
		return n, true
	case int32:
		return int64(n), true
	case int:
		return int64(n), true
	default:
		return 0, false
	}
}
