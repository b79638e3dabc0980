package policy

import authdomain "taskboard-backend/internal/auth/domain"

// Field names a mutable task attribute as it appears in the update payload.
type Field string

const (
	FieldTitle        Field = "title"
	FieldDescription  Field = "description"
	FieldAssignedTo   Field = "assignedTo"
	FieldStatus       Field = "status"
	FieldPriority     Field = "priority"
	FieldDueDate      Field = "dueDate"
	FieldProgressNote Field = "progressNote"
)

type fieldSet map[Field]struct{}

func newFieldSet(fields ...Field) fieldSet {
	s := make(fieldSet, len(fields))
	for _, f := range fields {
		s[f] = struct{}{}
	}
	return s
}

func (s fieldSet) has(f Field) bool {
	_, ok := s[f]
	return ok
}

// mutableFields is the update permission matrix. Fields missing from a role's
// set are dropped from that role's patches without error.
var mutableFields = map[authdomain.Role]fieldSet{
	authdomain.RoleAdmin: newFieldSet(
		FieldTitle,
		FieldDescription,
		FieldAssignedTo,
		FieldStatus,
		FieldPriority,
		FieldDueDate,
		FieldProgressNote,
	),
	authdomain.RoleMember: newFieldSet(
		FieldStatus,
		FieldProgressNote,
	),
}

// CanMutate reports whether role may change field on a task it is allowed to
// update at all.
func CanMutate(role authdomain.Role, field Field) bool {
	return mutableFields[role].has(field)
}
