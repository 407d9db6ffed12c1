package admin

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateStore(t *testing.T) {
	adminID := int64(11111)

	t.Run("DefaultIsIdle", func(t *testing.T) {
		store := newStateStore()
		assert.Equal(t, Context{State: StateIdle}, store.get(adminID))
	})

	t.Run("SetReturnsCopy", func(t *testing.T) {
		store := newStateStore()
		store.set(adminID, Context{State: StateAwaitingText, Audience: AudienceAdmins})

		ctx := store.get(adminID)
		ctx.Text = "mutated"

		assert.Empty(t, store.get(adminID).Text)
	})

	t.Run("SaveTextAdvancesKeepingAudience", func(t *testing.T) {
		store := newStateStore()
		store.set(adminID, Context{State: StateAwaitingText, Audience: AudienceAllUsers})
		store.saveText(adminID, "Привет всем")

		ctx := store.get(adminID)
		assert.Equal(t, StateConfirming, ctx.State)
		assert.Equal(t, "Привет всем", ctx.Text)
		assert.Equal(t, AudienceAllUsers, ctx.Audience)
	})

	t.Run("ResetDropsEverything", func(t *testing.T) {
		store := newStateStore()
		store.set(adminID, Context{State: StateConfirming, Text: "secret", Audience: AudienceAdmins})
		store.reset(adminID)

		ctx := store.get(adminID)
		assert.Equal(t, StateIdle, ctx.State)
		assert.Empty(t, ctx.Text)
	})

	t.Run("AdminsAreIndependent", func(t *testing.T) {
		store := newStateStore()
		store.set(adminID, Context{State: StateAwaitingText, Audience: AudienceAdmins})
		store.set(adminID+1, Context{State: StateConfirming, Text: "other", Audience: AudienceAllUsers})

		assert.Equal(t, StateAwaitingText, store.get(adminID).State)
		assert.Equal(t, StateConfirming, store.get(adminID+1).State)

		store.reset(adminID)
		assert.Equal(t, StateConfirming, store.get(adminID+1).State)
	})
}
