package effect

import (
	"github.com/sirupsen/logrus"
)

// Effect is a side effect of a committed mutation: a notification fan-out,
// a cache invalidation, an index sync. Effects run after the transaction
// commits and are best-effort, a failing effect never fails the mutation.
type Effect struct {
	Desc string
	Act  func() error
}

var RunFunc = Run

func Run(effects []Effect) {
	for _, e := range effects {
		if e.Act == nil {
			continue
		}
		if err := e.Act(); err != nil {
			logrus.Warnf("effect failed: %s: %v", e.Desc, err)
		}
	}
}
