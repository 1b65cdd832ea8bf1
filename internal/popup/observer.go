package popup

// Observer receives engine activity, typically metrics.
type Observer interface {
	ObserveFetch(result string)
	ObserveCardShown(kind string)
	ObserveRecovery()
}

const (
	FetchResultOK       = "ok"
	FetchResultDisabled = "disabled"
	FetchResultError    = "error"

	CardKindRotation = "rotation"
	CardKindPriority = "priority"
)

type nopObserver struct{}

func (nopObserver) ObserveFetch(string)     {}
func (nopObserver) ObserveCardShown(string) {}
func (nopObserver) ObserveRecovery()        {}
