package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_SlotLifecycle(t *testing.T) {
	s := NewSession()
	require.NotEmpty(t, s.ID)

	_, ok := s.LastDataset()
	assert.False(t, ok)

	first := &Dataset{Selector: DatasetSelector{Name: "IPEDS Directory", Year: 2010}, Data: []byte(`[1]`)}
	s.Store(first)
	got, ok := s.LastDataset()
	require.True(t, ok)
	assert.Same(t, first, got)

	second := &Dataset{Selector: DatasetSelector{Name: "IPEDS Admissions", Year: 2011}, Data: []byte(`[2]`)}
	s.Store(second)
	got, _ = s.LastDataset()
	assert.Same(t, second, got)

	s.Clear()
	_, ok = s.LastDataset()
	assert.False(t, ok)
}

func TestSessions_AreIsolated(t *testing.T) {
	a, b := NewSession(), NewSession()
	assert.NotEqual(t, a.ID, b.ID)

	a.Store(&Dataset{Selector: DatasetSelector{Name: "IPEDS Directory", Year: 2003}})
	_, ok := b.LastDataset()
	assert.False(t, ok)
}

func TestDatasetSelector_Key(t *testing.T) {
	assert.Equal(t, "IPEDS Directory:2010", DatasetSelector{Name: "IPEDS Directory", Year: 2010}.Key())
	assert.NotEqual(t,
		DatasetSelector{Name: "IPEDS Directory", Year: 2010}.Key(),
		DatasetSelector{Name: "IPEDS Directory", Year: 2011}.Key())
	assert.Equal(t, "IPEDS Directory (2010)", DatasetSelector{Name: "IPEDS Directory", Year: 2010}.String())
}
