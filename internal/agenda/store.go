package agenda

import (
	"sort"
	"sync"
	"time"

	"github.com/BruksfildServices01/studio-scheduler/internal/grid"
)

// Store é a coleção ordenada por início dos agendamentos carregados.
// Substituições preservam a posição do registro.
type Store struct {
	mu    sync.RWMutex
	items []Appointment
}

func NewStore() *Store {
	return &Store{}
}

// Reset troca o conteúdo inteiro pelo resultado de uma busca.
func (s *Store) Reset(items []Appointment) {
	sorted := make([]Appointment, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartTime.Before(sorted[j].StartTime)
	})

	s.mu.Lock()
	s.items = sorted
	s.mu.Unlock()
}

// Insert coloca o registro na posição ordenada por início.
func (s *Store) Insert(a Appointment) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := sort.Search(len(s.items), func(i int) bool {
		return s.items[i].StartTime.After(a.StartTime)
	})
	s.insertAt(idx, a)
}

func (s *Store) insertAt(idx int, a Appointment) {
	if idx < 0 || idx > len(s.items) {
		idx = len(s.items)
	}
	s.items = append(s.items, Appointment{})
	copy(s.items[idx+1:], s.items[idx:])
	s.items[idx] = a
}

// InsertAt devolve um registro à posição que ocupava.
func (s *Store) InsertAt(idx int, a Appointment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertAt(idx, a)
}

func (s *Store) indexOf(id int64) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) Get(id int64) (Appointment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexOf(id); i >= 0 {
		return s.items[i], true
	}
	return Appointment{}, false
}

// Replace sobrescreve o registro de id no mesmo lugar. Serve também para
// trocar o id temporário pelo definitivo.
func (s *Store) Replace(id int64, a Appointment) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.items[i] = a
	return true
}

// Remove tira o registro e devolve a posição que ele tinha.
func (s *Store) Remove(id int64) (Appointment, int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return Appointment{}, -1, false
	}
	a := s.items[i]
	s.items = append(s.items[:i], s.items[i+1:]...)
	return a, i, true
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *Store) All() []Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Appointment, len(s.items))
	copy(out, s.items)
	return out
}

// Between devolve os registros que tocam [from, to).
func (s *Store) Between(from, to time.Time) []Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Appointment, 0, len(s.items))
	for _, a := range s.items {
		if overlaps(a, from, to) {
			out = append(out, a)
		}
	}
	return out
}

// GridItems entrega os registros do intervalo já no formato da grade.
func (s *Store) GridItems(from, to time.Time) []grid.Item {
	list := s.Between(from, to)
	out := make([]grid.Item, 0, len(list))
	for _, a := range list {
		out = append(out, GridItem(a))
	}
	return out
}
