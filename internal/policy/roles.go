// Package policy wires the gate engine to the job board: one permission
// profile per role, ownership rules for jobs, and HTTP guards.
package policy

import (
	"github.com/diewo77/jobboard/gate"
	"github.com/diewo77/jobboard/internal/models"
)

// Resource types.
const (
	ResourceJob         = "job"
	ResourceApplication = "application"
	ResourceSaved       = "saved"
	ResourceProfile     = "profile"
)

// Actions beyond the gate's CRUD set.
const (
	ActionApply      gate.Action = "apply"
	ActionSave       gate.Action = "save"
	ActionApplicants gate.Action = "applicants"
)

var profiles = map[models.Role]*gate.StaticProfile{
	models.RoleSeeker: gate.NewStaticProfile(string(models.RoleSeeker),
		gate.NewPermission(ResourceJob, ActionApply),
		gate.NewPermission(ResourceJob, ActionSave),
		gate.NewPermission(ResourceApplication, gate.ActionList),
		gate.NewPermission(ResourceSaved, gate.ActionList),
		gate.NewPermission(ResourceProfile, gate.ActionAll),
	),
	models.RoleEmployer: gate.NewStaticProfile(string(models.RoleEmployer),
		gate.NewPermission(ResourceJob, gate.ActionCreate),
		gate.NewPermission(ResourceJob, gate.ActionUpdate),
		gate.NewPermission(ResourceJob, gate.ActionDelete),
		gate.NewPermission(ResourceJob, gate.ActionManage),
		gate.NewPermission(ResourceJob, ActionApplicants),
		gate.NewPermission(ResourceProfile, gate.ActionAll),
	),
	models.RoleAdmin: gate.NewStaticProfile(string(models.RoleAdmin), gate.PermissionSuperAdmin),
}

// ProfileFor returns the permission profile of role, or nil for an
// unknown role.
func ProfileFor(role models.Role) gate.Profile {
	p, ok := profiles[role]
	if !ok {
		return nil
	}
	return p
}
