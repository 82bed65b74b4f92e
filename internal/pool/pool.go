package pool

// Resettable is a constraint for types that have a Reset() method.
type Resettable interface {
	Reset()
}

// Poolable is a constraint for types that can be pooled.
type Poolable interface {
	Resettable
	comparable
}

// Pool is a generic bounded pool for reusing objects of type T.
type Pool[T Poolable] struct {
	items chan T
}

// New creates a Pool holding at most capacity objects.
func New[T Poolable](capacity int) *Pool[T] {
	return &Pool[T]{
		items: make(chan T, capacity),
	}
}

// Get retrieves an object from the pool, or the zero value when empty.
func (p *Pool[T]) Get() T {
	select {
	case item := <-p.items:
		return item
	default:
		var zero T
		return zero
	}
}

// Put resets the object and returns it to the pool. If the pool is full
// the object is discarded.
func (p *Pool[T]) Put(item T) {
	var zero T
	if item != zero {
		item.Reset()
	}

	select {
	case p.items <- item:
	default:
	}
}
