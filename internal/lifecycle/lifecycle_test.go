package lifecycle_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/pennywise/internal/apperr"
	"github.com/MrJamesThe3rd/pennywise/internal/lifecycle"
)

type record struct {
	lifecycle.State
	owner uuid.UUID
}

func (r *record) OwnerID() uuid.UUID { return r.owner }

func TestState_Transitions(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	var s lifecycle.State

	require.NoError(t, s.SoftDelete(now))
	assert.True(t, s.IsDeleted)
	require.NotNil(t, s.DeletedAt)
	assert.True(t, s.DeletedAt.Equal(now))

	assert.ErrorIs(t, s.SoftDelete(now.Add(time.Hour)), lifecycle.ErrWrongState)
	assert.True(t, s.DeletedAt.Equal(now), "second soft delete must not move the timestamp")

	require.NoError(t, s.Restore())
	assert.False(t, s.IsDeleted)
	assert.Nil(t, s.DeletedAt)

	assert.ErrorIs(t, s.Restore(), lifecycle.ErrWrongState)
}

func TestOwned(t *testing.T) {
	owner := uuid.New()
	active := &record{owner: owner}
	deleted := &record{owner: owner, State: lifecycle.State{IsDeleted: true}}

	type testCase struct {
		name   string
		v      lifecycle.Ownable
		user   uuid.UUID
		filter lifecycle.Filter
		want   bool
	}

	tests := []testCase{
		{name: "ActiveOwned", v: active, user: owner, filter: lifecycle.Active, want: true},
		{name: "ForeignOwner", v: active, user: uuid.New(), filter: lifecycle.Active, want: false},
		{name: "DeletedWhenActiveExpected", v: deleted, user: owner, filter: lifecycle.Active, want: false},
		{name: "DeletedWhenDeletedExpected", v: deleted, user: owner, filter: lifecycle.Deleted, want: true},
		{name: "ActiveWhenDeletedExpected", v: active, user: owner, filter: lifecycle.Deleted, want: false},
		{name: "AnyState", v: deleted, user: owner, filter: lifecycle.Any, want: true},
		{name: "Nil", v: nil, user: owner, filter: lifecycle.Any, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, lifecycle.Owned(tt.v, tt.user, tt.filter))
		})
	}
}

func TestResolveCreate(t *testing.T) {
	existing := uuid.New()

	type args struct {
		policy    lifecycle.Policy
		collision lifecycle.Collision
		force     bool
	}

	type testCase struct {
		name string
		args args
		want lifecycle.Decision
	}

	tests := []testCase{
		{
			name: "NoCollision",
			args: args{policy: lifecycle.Suggest},
			want: lifecycle.DecisionCreate,
		},
		{
			name: "ActiveDuplicate",
			args: args{policy: lifecycle.Suggest, collision: lifecycle.Collision{ActiveID: existing}},
			want: lifecycle.DecisionDuplicate,
		},
		{
			name: "ActiveDuplicateIgnoresForce",
			args: args{policy: lifecycle.Suggest, collision: lifecycle.Collision{ActiveID: existing}, force: true},
			want: lifecycle.DecisionDuplicate,
		},
		{
			name: "DeletedSiblingSuggests",
			args: args{policy: lifecycle.Suggest, collision: lifecycle.Collision{DeletedID: existing}},
			want: lifecycle.DecisionSuggest,
		},
		{
			name: "DeletedSiblingForced",
			args: args{policy: lifecycle.Suggest, collision: lifecycle.Collision{DeletedID: existing}, force: true},
			want: lifecycle.DecisionCreate,
		},
		{
			name: "DeletedSiblingAutoRestores",
			args: args{policy: lifecycle.AutoRestore, collision: lifecycle.Collision{DeletedID: existing}},
			want: lifecycle.DecisionRestore,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := lifecycle.ResolveCreate(tt.args.policy, tt.args.collision, tt.args.force)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecision_Err(t *testing.T) {
	deletedID := uuid.New()
	c := lifecycle.Collision{DeletedID: deletedID}

	assert.NoError(t, lifecycle.DecisionCreate.Err("Wallet", c))
	assert.NoError(t, lifecycle.DecisionRestore.Err("Category", c))

	err := lifecycle.DecisionDuplicate.Err("Wallet", c)
	assert.True(t, apperr.Is(err, apperr.KindConflict))
	assert.EqualError(t, err, "Wallet name already exists")

	err = lifecycle.DecisionSuggest.Err("Wallet", c)
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindConflict, e.Kind)
	assert.Equal(t, true, e.Payload["restore_suggestion"])
	assert.Equal(t, deletedID, e.Payload["deleted_id"])

	err = lifecycle.DecisionSuggest.ErrOn("Budget", "category", c)
	assert.EqualError(t, err, "A deleted budget with this category exists. Restore it or retry with force=true")
}

func TestRestoreWindowOpen(t *testing.T) {
	deletedAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	window := 30 * 24 * time.Hour

	assert.True(t, lifecycle.RestoreWindowOpen(deletedAt, deletedAt.Add(29*24*time.Hour), window))
	assert.False(t, lifecycle.RestoreWindowOpen(deletedAt, deletedAt.Add(window), window))
	assert.False(t, lifecycle.RestoreWindowOpen(deletedAt, deletedAt.Add(31*24*time.Hour), window))
}
