package lifecycle

// Observer is the one-way notification sink invoked on every accepted
// lifecycle transition. Implementations must not call back into whatever
// drives the machine, must not block indefinitely, and must be safe to
// invoke from any goroutine: the orchestrator calls it synchronously and
// in transition order, so a slow or panicking observer stalls or crashes
// the connect call itself.
type Observer interface {
	OnStateChanged(prev, next Snapshot)
}

// ObserverFunc adapts a plain function to the Observer interface, mirroring
// the standard library's http.HandlerFunc pattern for single-method
// capabilities.
type ObserverFunc func(prev, next Snapshot)

// OnStateChanged calls f(prev, next).
func (f ObserverFunc) OnStateChanged(prev, next Snapshot) { f(prev, next) }

// NopObserver discards every notification. Useful as a default when a
// caller does not care to watch the lifecycle.
var NopObserver Observer = ObserverFunc(func(Snapshot, Snapshot) {})

// multiObserver fans a single notification out to several observers in
// registration order.
type multiObserver []Observer

// MultiObserver combines several observers into one, preserving delivery
// order: each accepted transition reaches every observer before the next
// transition is processed.
func MultiObserver(observers ...Observer) Observer {
	filtered := make(multiObserver, 0, len(observers))
	for _, o := range observers {
		if o != nil {
			filtered = append(filtered, o)
		}
	}
	return filtered
}

func (m multiObserver) OnStateChanged(prev, next Snapshot) {
	for _, o := range m {
		o.OnStateChanged(prev, next)
	}
}
