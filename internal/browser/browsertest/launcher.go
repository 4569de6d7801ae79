package browsertest

import (
	"context"

	"github.com/fjglira/GoRPA-OrderBot/internal/browser"
)

// Launcher hands out Page, or fails with Err.
type Launcher struct {
	Page   *FakePage
	Err    error
	Opened int
}

var _ browser.Launcher = (*Launcher)(nil)

func (l *Launcher) Open(ctx context.Context) (browser.Page, error) {
	l.Opened++
	if l.Err != nil {
		return nil, l.Err
	}
	return l.Page, ctx.Err()
}
