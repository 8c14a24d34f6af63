package core

// Observable holds a value and notifies subscribers synchronously whenever
// Set changes it.
type Observable[T comparable] struct {
	value       T
	subscribers []func(T)
}

func NewObservable[T comparable](initial T) *Observable[T] {
	return &Observable[T]{value: initial}
}

func (o *Observable[T]) Get() T {
	return o.value
}

// Set stores v. Subscribers run in subscription order, only if v differs
// from the current value.
func (o *Observable[T]) Set(v T) {
	if v == o.value {
		return
	}
	o.value = v
	for _, fn := range o.subscribers {
		fn(v)
	}
}

func (o *Observable[T]) Subscribe(fn func(T)) {
	o.subscribers = append(o.subscribers, fn)
}
