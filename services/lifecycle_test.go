package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Respawn-League/citadel/models"
)

func TestNextRosterStatus(t *testing.T) {
	tests := []struct {
		name    string
		current models.RosterStatus
		event   RosterEvent
		want    models.RosterStatus
		wantErr bool
	}{
		{name: "submit from draft", current: models.RosterStatusDraft, event: EventSubmit, want: models.RosterStatusPending},
		{name: "approve from pending", current: models.RosterStatusPending, event: EventApprove, want: models.RosterStatusApproved},
		{name: "reject keeps pending", current: models.RosterStatusPending, event: EventReject, want: models.RosterStatusPending},
		{name: "edit keeps approved", current: models.RosterStatusApproved, event: EventEdit, want: models.RosterStatusApproved},
		{name: "disband from approved", current: models.RosterStatusApproved, event: EventDisband, want: models.RosterStatusDisbanded},
		{name: "destroy from pending", current: models.RosterStatusPending, event: EventDestroy, want: models.RosterStatusDestroyed},

		{name: "approve from draft rejected", current: models.RosterStatusDraft, event: EventApprove, wantErr: true},
		{name: "approve from approved rejected", current: models.RosterStatusApproved, event: EventApprove, wantErr: true},
		{name: "submit from pending rejected", current: models.RosterStatusPending, event: EventSubmit, wantErr: true},
		{name: "edit from disbanded rejected", current: models.RosterStatusDisbanded, event: EventEdit, wantErr: true},
		{name: "disband from destroyed rejected", current: models.RosterStatusDestroyed, event: EventDisband, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextRosterStatus(tt.current, tt.event)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrRosterStateConflict)
				// Статус не меняется при отклонённом переходе.
				assert.Equal(t, tt.current, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTerminalStatusesHaveNoTransitions(t *testing.T) {
	events := []RosterEvent{EventSubmit, EventApprove, EventReject, EventEdit, EventDisband, EventDestroy}
	for _, status := range []models.RosterStatus{models.RosterStatusDisbanded, models.RosterStatusDestroyed} {
		for _, event := range events {
			_, err := NextRosterStatus(status, event)
			assert.ErrorIs(t, err, ErrRosterStateConflict, "status %s event %s", status, event)
		}
	}
}

func TestMatchCountPolicy(t *testing.T) {
	ctx := context.Background()
	matches := newFakeMatchRepo()
	policy := NewMatchCountPolicy(matches)

	roster := &models.Roster{ID: 7}

	t.Run("no matches at all", func(t *testing.T) {
		ok, err := policy.Disbandable(ctx, roster)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = policy.Destroyable(ctx, roster)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("played matches block destroy only", func(t *testing.T) {
		matches.total[roster.ID] = 3
		matches.unplayed[roster.ID] = 0

		ok, err := policy.Disbandable(ctx, roster)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = policy.Destroyable(ctx, roster)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("unplayed matches block both", func(t *testing.T) {
		matches.total[roster.ID] = 3
		matches.unplayed[roster.ID] = 1

		ok, err := policy.Disbandable(ctx, roster)
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = policy.Destroyable(ctx, roster)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
