package browser

import "errors"

var (
	// ErrPoolClosed is returned by Acquire after CloseAll.
	ErrPoolClosed = errors.New("browser pool is closed")

	// ErrSessionDead marks errors caused by the Chrome process or its
	// DevTools connection dying. The session that produced one must be
	// discarded, not reused.
	ErrSessionDead = errors.New("browser session is dead")
)
