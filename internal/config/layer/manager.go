package layer

import (
	"sort"
	"sync"
)

// Manager keeps source layers ordered by priority.
type Manager struct {
	mu     sync.RWMutex
	layers []*Layer // ascending priority
}

// NewManager creates a new layer manager.
func NewManager() *Manager {
	return &Manager{}
}

// SetLayer adds layer, replacing any existing layer with the same name.
func (m *Manager) SetLayer(layer *Layer) {
	m.mu.Lock()
	defer m.mu.Unlock()

	replaced := false
	for i, existing := range m.layers {
		if existing.Name == layer.Name {
			m.layers[i] = layer
			replaced = true
			break
		}
	}
	if !replaced {
		m.layers = append(m.layers, layer)
	}

	sort.SliceStable(m.layers, func(i, j int) bool {
		return m.layers[i].Priority < m.layers[j].Priority
	})
}

// RemoveLayer removes a layer by name.
// Returns true if the layer was found and removed.
func (m *Manager) RemoveLayer(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, layer := range m.layers {
		if layer.Name == name {
			m.layers = append(m.layers[:i], m.layers[i+1:]...)
			return true
		}
	}
	return false
}

// GetLayer returns a layer by name.
func (m *Manager) GetLayer(name string) *Layer {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, layer := range m.layers {
		if layer.Name == name {
			return layer
		}
	}
	return nil
}

// LayerByPath returns the layer loaded from path, if any.
func (m *Manager) LayerByPath(path string) *Layer {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, layer := range m.layers {
		if layer.Path != "" && layer.Path == path {
			return layer
		}
	}
	return nil
}

// Layers returns a copy of all layers sorted by priority, lowest first.
func (m *Manager) Layers() []*Layer {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*Layer, len(m.layers))
	copy(result, m.layers)
	return result
}
