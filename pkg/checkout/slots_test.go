package checkout

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotsPostAuthRedirectConsumeOnce(t *testing.T) {
	slots := NewSlots(NewMemoryStore())

	slots.SetPostAuthRedirect("/checkout?template=restoran-modern&option=wordpress")

	path, ok := slots.ConsumePostAuthRedirect()
	require.True(t, ok)
	assert.Equal(t, "/checkout?template=restoran-modern&option=wordpress", path)

	_, ok = slots.ConsumePostAuthRedirect()
	assert.False(t, ok, "consumed slot stays empty until written again")
}

func TestSlotsLastWriteWins(t *testing.T) {
	slots := NewSlots(NewMemoryStore())

	slots.SetPostAuthRedirect("/checkout?template=a&option=b")
	slots.SetPostAuthRedirect("/dashboard")

	path, ok := slots.ConsumePostAuthRedirect()
	require.True(t, ok)
	assert.Equal(t, "/dashboard", path)
}

func TestSlotsPendingCheckoutRoundtrip(t *testing.T) {
	slots := NewSlots(NewMemoryStore())

	slots.SetPendingCheckout(PendingCheckout{TemplateID: "butik-modern", OptionID: "html-export"})

	pc, ok := slots.PendingCheckout()
	require.True(t, ok)
	assert.Equal(t, "butik-modern", pc.TemplateID)
	assert.Equal(t, "html-export", pc.OptionID)

	// Peeking does not consume.
	_, ok = slots.PendingCheckout()
	assert.True(t, ok)

	pc, ok = slots.ConsumePendingCheckout()
	require.True(t, ok)
	assert.Equal(t, "butik-modern", pc.TemplateID)

	_, ok = slots.PendingCheckout()
	assert.False(t, ok)
}

func TestSlotsPendingCheckoutCorruptValue(t *testing.T) {
	store := NewMemoryStore()
	store.Set(slotPendingCheckout, "{not json")
	slots := NewSlots(store)

	_, ok := slots.PendingCheckout()
	assert.False(t, ok)
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slots.json")

	first := NewSlots(NewFileStore(path))
	first.SetPostAuthRedirect("/checkout?template=kafe-kopi&option=custom-dashboard")
	first.SetPendingCheckout(PendingCheckout{TemplateID: "kafe-kopi", OptionID: "custom-dashboard"})

	// A fresh store over the same file sees the persisted slots.
	second := NewSlots(NewFileStore(path))

	redirect, ok := second.ConsumePostAuthRedirect()
	require.True(t, ok)
	assert.Equal(t, "/checkout?template=kafe-kopi&option=custom-dashboard", redirect)

	pc, ok := second.PendingCheckout()
	require.True(t, ok)
	assert.Equal(t, "kafe-kopi", pc.TemplateID)

	// The consume above persisted too.
	third := NewSlots(NewFileStore(path))
	_, ok = third.PostAuthRedirect()
	assert.False(t, ok)
}

func TestFileStoreMissingFile(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "absent.json"))

	_, ok := store.Get(slotPostAuthRedirect)
	assert.False(t, ok)

	store.Clear(slotPendingCheckout)
}
