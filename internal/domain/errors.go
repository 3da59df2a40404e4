package domain

import "fmt"

// LoadError reports a watchlist file that could not be turned into entries.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load watchlist %q: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// ProviderError reports a failed or unusable response from a market-data or news provider.
type ProviderError struct {
	Provider   string
	Subject    string // symbol or news query
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %q: status %d: %v", e.Provider, e.Subject, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Provider, e.Subject, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// DispatchError reports a notification rejected by a dispatcher.
type DispatchError struct {
	Dispatcher string
	Symbol     string
	Err        error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("dispatch %s via %s: %v", e.Symbol, e.Dispatcher, e.Err)
}

func (e *DispatchError) Unwrap() error { return e.Err }
