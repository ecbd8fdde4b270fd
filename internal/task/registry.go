package task

import (
	"fmt"
	"strings"

	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/consts"
	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/errs"
)

// Registry maps task ids to handlers. It is built once and read-only after.
type Registry struct {
	handlers map[string]Handler
	order    []string
}

// NewRegistry registers handlers in the given order; ids must be unique.
func NewRegistry(handlers ...Handler) (*Registry, error) {
	r := &Registry{handlers: make(map[string]Handler, len(handlers))}
	for _, h := range handlers {
		id := h.Descriptor().ID
		if id == "" || id == consts.TASK_ALL {
			return nil, fmt.Errorf("invalid task id %q", id)
		}
		if _, dup := r.handlers[id]; dup {
			return nil, fmt.Errorf("task %s already registered", id)
		}
		r.handlers[id] = h
		r.order = append(r.order, id)
	}
	return r, nil
}

// DefaultRegistry holds every built-in maintenance task.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(
		cleanAuditLogs,
		cleanSessions,
		cleanWorkspaces,
		vacuumTables{},
		cleanRedis{},
		generateReport{},
		backupTable{},
	)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Registry) Lookup(id string) (Handler, bool) {
	h, ok := r.handlers[id]
	return h, ok
}

// Descriptors lists the registered tasks in registration order.
func (r *Registry) Descriptors() []Descriptor {
	out := make([]Descriptor, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.handlers[id].Descriptor())
	}
	return out
}

// allIDs is what the "all" alias expands to. backup_table is left out
// because it only runs against explicitly named tables.
var allIDs = []string{
	consts.TASK_CLEAN_AUDIT_LOGS,
	consts.TASK_CLEAN_SESSIONS,
	consts.TASK_CLEAN_WORKSPACES,
	consts.TASK_VACUUM_TABLES,
	consts.TASK_CLEAN_REDIS,
	consts.TASK_GENERATE_REPORT,
}

// Expand resolves the "all" alias and trims blanks; order and duplicates
// are preserved.
func (r *Registry) Expand(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		switch id {
		case "":
		case consts.TASK_ALL:
			for _, a := range allIDs {
				if _, ok := r.handlers[a]; ok {
					out = append(out, a)
				}
			}
		default:
			out = append(out, id)
		}
	}
	return out
}

// Validate rejects an empty request or any unknown id.
func (r *Registry) Validate(ids []string) error {
	if len(ids) == 0 {
		return errs.New(errs.KindValidation, "no tasks requested")
	}
	var unknown []string
	for _, id := range ids {
		if _, ok := r.handlers[id]; !ok {
			unknown = append(unknown, id)
		}
	}
	if len(unknown) > 0 {
		return errs.New(errs.KindValidation, fmt.Sprintf("unknown task id(s): %s (known: %s)",
			strings.Join(unknown, ", "), strings.Join(r.order, ", ")))
	}
	return nil
}
