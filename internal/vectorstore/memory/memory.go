package memory

import (
	"errors"
	"sync"

	"codeopt/internal/domain"
	"codeopt/internal/vectorstore"
)

// Store is an in-process vector store using brute-force cosine similarity.
// Vectors are expected to be L2-normalized, so the dot product is the cosine
// score. Upserts replace by point ID.
type Store struct {
	mu        sync.RWMutex
	dimension int
	byID      map[string]int
	points    []domain.Point
}

func NewStore() *Store {
	return &Store{byID: make(map[string]int)}
}

func (s *Store) Init(dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dimension = dimension
	s.byID = make(map[string]int)
	s.points = nil
	return nil
}

func (s *Store) Upsert(points []domain.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range points {
		if len(p.Vector) != s.dimension {
			return errors.New("vector dimension mismatch")
		}
	}
	for _, p := range points {
		if idx, ok := s.byID[p.ID]; ok {
			s.points[idx] = p
			continue
		}
		s.byID[p.ID] = len(s.points)
		s.points = append(s.points, p)
	}
	return nil
}

func (s *Store) Search(vector []float64, topK int) ([]domain.RetrievedRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if topK <= 0 {
		topK = 3
	}
	scores := make([]float64, len(s.points))
	for i := range s.points {
		scores[i] = dot(s.points[i].Vector, vector)
	}
	idxs := argsortDesc(scores)
	if topK > len(idxs) {
		topK = len(idxs)
	}
	results := make([]domain.RetrievedRecord, 0, topK)
	for i := 0; i < topK; i++ {
		p := s.points[idxs[i]]
		results = append(results, vectorstore.RecordFromPoint(p.Document, p.Metadata, scores[idxs[i]]))
	}
	return results, nil
}

func (s *Store) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.points), nil
}

func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID = make(map[string]int)
	s.points = nil
	return nil
}

func dot(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

func argsortDesc(vals []float64) []int {
	idxs := make([]int, len(vals))
	for i := range idxs {
		idxs[i] = i
	}
	quicksort(idxs, vals, 0, len(idxs)-1)
	return idxs
}

func quicksort(idxs []int, vals []float64, lo, hi int) {
	if lo >= hi {
		return
	}
	i, j := lo, hi
	pivot := vals[idxs[(lo+hi)/2]]
	for i <= j {
		for vals[idxs[i]] > pivot { // desc order
			i++
		}
		for vals[idxs[j]] < pivot {
			j--
		}
		if i <= j {
			idxs[i], idxs[j] = idxs[j], idxs[i]
			i++
			j--
		}
	}
	if lo < j {
		quicksort(idxs, vals, lo, j)
	}
	if i < hi {
		quicksort(idxs, vals, i, hi)
	}
}
