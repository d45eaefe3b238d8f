package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/smartcity/complaints-api/internal/core/domain"
	"github.com/smartcity/complaints-api/internal/core/ports"
)

func newIdentityFixture() (*IdentityService, *fixture, *stubRevocations) {
	f := newFixture()
	revocations := newStubRevocations()
	return NewIdentityService(f.users, revocations, discardLogger), f, revocations
}

func strPtr(s string) *string { return &s }

func TestIdentityService_Resolve(t *testing.T) {
	svc, f, _ := newIdentityFixture()
	active := f.citizen("cit-a", "ahmedabad")
	inactive := f.citizen("cit-i", "ahmedabad")
	f.users.byID[inactive.ID].IsActive = false

	got, err := svc.Resolve(context.Background(), active.ID)
	require.NoError(t, err)
	assert.Equal(t, active.ID, got.ID)

	for _, id := range []string{"", inactive.ID, "deleted"} {
		_, err := svc.Resolve(context.Background(), id)
		assert.ErrorIs(t, err, domain.ErrUnauthenticated, "id %q", id)
	}
}

func TestIdentityService_UpdateProfile(t *testing.T) {
	svc, f, _ := newIdentityFixture()
	c := f.citizen("cit-a", "ahmedabad")

	updated, err := svc.UpdateProfile(context.Background(), c, ports.UserProfileUpdate{
		City:        strPtr("  Surat "),
		PhoneNumber: strPtr("1234567890"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Surat", updated.City)
	assert.Equal(t, "surat", updated.CityKey())
	assert.Equal(t, "1234567890", updated.PhoneNumber)

	_, err = svc.UpdateProfile(context.Background(), c, ports.UserProfileUpdate{Username: strPtr(" ")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIdentityService_UpdateProfile_MovesJurisdiction(t *testing.T) {
	svc, f, _ := newIdentityFixture()
	c := f.citizen("cit-a", "ahmedabad")
	ahmedabad := f.admin("adm-b", "ahmedabad")
	surat := f.admin("adm-c", "surat")
	x, err := f.svc.CreateCase(context.Background(), c, caseInput("Case X"))
	require.NoError(t, err)

	_, err = svc.UpdateProfile(context.Background(), c, ports.UserProfileUpdate{City: strPtr("Surat")})
	require.NoError(t, err)

	_, err = f.svc.GetCase(context.Background(), ahmedabad, x.ID)
	assert.ErrorIs(t, err, domain.ErrCaseNotFound)
	_, err = f.svc.GetCase(context.Background(), surat, x.ID)
	assert.NoError(t, err)
}

func TestIdentityService_ChangePassword(t *testing.T) {
	svc, f, revocations := newIdentityFixture()
	hash, _ := bcrypt.GenerateFromPassword([]byte("old-password"), bcrypt.MinCost)
	c := f.citizen("cit-a", "ahmedabad")
	f.users.byID[c.ID].PasswordHash = string(hash)
	c.PasswordHash = string(hash)

	err := svc.ChangePassword(context.Background(), c, "wrong", "new-password")
	assert.ErrorIs(t, err, domain.ErrWrongPassword)
	assert.Equal(t, domain.KindInvalidRequest, domain.KindOf(err), "a wrong current password is not a session failure")

	err = svc.ChangePassword(context.Background(), c, "old-password", "short")
	assert.ErrorIs(t, err, domain.ErrWeakPassword)

	require.NoError(t, svc.ChangePassword(context.Background(), c, "old-password", "new-password"))
	stored := f.users.byID[c.ID].PasswordHash
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored), []byte("new-password")))

	at, _ := revocations.RevokedAt(context.Background(), c.ID)
	assert.False(t, at.IsZero(), "password change must revoke outstanding tokens")
}

func TestIdentityService_CreateEmployee(t *testing.T) {
	svc, f, _ := newIdentityFixture()
	admin := f.admin("adm-b", "Ahmedabad")
	f.users.byID[admin.ID].State = "Gujarat"
	admin.State = "Gujarat"

	emp, err := svc.CreateEmployee(context.Background(), admin, ports.CreateEmployeeInput{
		Username:    "worker",
		Email:       "Worker@Example.com",
		Password:    "pass1234",
		PhoneNumber: "555",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleEmployee, emp.Role)
	assert.Equal(t, admin.ID, emp.AdminID)
	assert.Equal(t, "worker@example.com", emp.Email)
	assert.Equal(t, "Ahmedabad", emp.City, "location defaults to the admin's")
	assert.Equal(t, "Gujarat", emp.State)
	assert.True(t, emp.IsActive)

	citizen := f.citizen("cit-a", "ahmedabad")
	_, err = svc.CreateEmployee(context.Background(), citizen, ports.CreateEmployeeInput{Username: "x", Email: "x@example.com", Password: "pass1234", PhoneNumber: "1"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestIdentityService_ListManagedUsers(t *testing.T) {
	svc, f, _ := newIdentityFixture()
	admin := f.admin("adm-b", "ahmedabad")
	other := f.admin("adm-x", "surat")
	own := f.employee("emp-e", admin.ID)
	f.employee("emp-x", other.ID)
	local := f.citizen("cit-a", " Ahmedabad ")
	f.citizen("cit-s", "surat")

	users, err := svc.ListManagedUsers(context.Background(), admin)
	require.NoError(t, err)
	var ids []string
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	assert.ElementsMatch(t, []string{own.ID, local.ID}, ids)

	employees, err := svc.ListEmployees(context.Background(), admin)
	require.NoError(t, err)
	require.Len(t, employees, 1)
	assert.Equal(t, own.ID, employees[0].ID)

	_, err = svc.ListEmployees(context.Background(), own)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestIdentityService_DeactivateAndDelete(t *testing.T) {
	svc, f, revocations := newIdentityFixture()
	admin := f.admin("adm-b", "ahmedabad")
	other := f.admin("adm-x", "ahmedabad")
	emp := f.employee("emp-e", admin.ID)
	foreign := f.employee("emp-x", other.ID)
	citizen := f.citizen("cit-a", "ahmedabad")

	require.NoError(t, svc.DeactivateUser(context.Background(), admin, emp.ID))
	assert.False(t, f.users.byID[emp.ID].IsActive)
	at, _ := revocations.RevokedAt(context.Background(), emp.ID)
	assert.False(t, at.IsZero())

	_, err := svc.Resolve(context.Background(), emp.ID)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	assert.ErrorIs(t, svc.DeactivateUser(context.Background(), admin, foreign.ID), domain.ErrUserNotFound)
	assert.ErrorIs(t, svc.DeleteUser(context.Background(), admin, other.ID), domain.ErrUserNotFound)
	assert.ErrorIs(t, svc.DeleteUser(context.Background(), admin, admin.ID), domain.ErrUserNotFound)

	require.NoError(t, svc.DeleteUser(context.Background(), admin, citizen.ID))
	_, ok := f.users.byID[citizen.ID]
	assert.False(t, ok)
}

func TestIdentityService_RevocationFailureIsBestEffort(t *testing.T) {
	svc, f, revocations := newIdentityFixture()
	admin := f.admin("adm-b", "ahmedabad")
	emp := f.employee("emp-e", admin.ID)
	revocations.err = errors.New("redis down")

	require.NoError(t, svc.DeactivateUser(context.Background(), admin, emp.ID))
	assert.False(t, f.users.byID[emp.ID].IsActive)
}

func TestUserManagedBy(t *testing.T) {
	admin := &domain.User{ID: "a", Role: domain.RoleAdmin, City: "Ahmedabad"}
	cases := []struct {
		name   string
		target *domain.User
		want   bool
	}{
		{"own employee", &domain.User{ID: "e", Role: domain.RoleEmployee, AdminID: "a"}, true},
		{"foreign employee", &domain.User{ID: "f", Role: domain.RoleEmployee, AdminID: "z"}, false},
		{"local citizen", &domain.User{ID: "c", Role: domain.RoleCitizen, City: "AHMEDABAD"}, true},
		{"remote citizen", &domain.User{ID: "d", Role: domain.RoleCitizen, City: "Surat"}, false},
		{"other admin", &domain.User{ID: "b", Role: domain.RoleAdmin, City: "Ahmedabad"}, false},
		{"self", admin, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, UserManagedBy(admin, tc.target), tc.name)
	}
}

func TestCaseVisibleTo(t *testing.T) {
	reporter := &domain.User{ID: "r", Role: domain.RoleCitizen, City: "Ahmedabad"}
	c := &domain.Case{ID: "x", UserID: "r", AssignedTo: "e"}

	assert.True(t, CaseVisibleTo(reporter, c, nil))
	assert.False(t, CaseVisibleTo(&domain.User{ID: "q", Role: domain.RoleCitizen}, c, nil))
	assert.True(t, CaseVisibleTo(&domain.User{ID: "e", Role: domain.RoleEmployee}, c, nil))
	assert.False(t, CaseVisibleTo(&domain.User{ID: "f", Role: domain.RoleEmployee}, c, nil))

	admin := &domain.User{ID: "a", Role: domain.RoleAdmin, City: "ahmedabad"}
	assert.True(t, CaseVisibleTo(admin, c, reporter))
	assert.False(t, CaseVisibleTo(admin, c, nil))
	assert.False(t, CaseVisibleTo(&domain.User{ID: "b", Role: domain.RoleAdmin}, c, reporter), "admin without a city sees nothing")
	assert.False(t, CaseVisibleTo(&domain.User{ID: "z", Role: "superuser"}, c, reporter))
}
