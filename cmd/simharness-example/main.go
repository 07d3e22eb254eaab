// Command simharness-example demonstrates wiring a sim.Unit end to end:
// two runners exchanging values over a Signal/QueuePort pair, a receive
// loop bounded by timeout waits and timed by a Stopwatch, and a mocked
// dependency verified at the end of the run. It is not a generic test runner — scenarios are authored as Go
// values and functions, the same library-not-framework posture the
// teacher's eventloop package takes.
package main

import (
	"os"

	sim "github.com/joeycumines/go-simharness"
	"github.com/joeycumines/logiface"
)

func main() {
	u := sim.NewUnit(os.Stdout, logiface.LevelInformational)

	events := sim.NewSignal[int]("events")

	_, err := u.Spawn("prod", func(r *sim.Runner) {
		port := sim.NewQueuePort[int](r, "inbox")
		events.Connect(port)
		for i := 0; i < 3; i++ {
			r.Wait(sim.Second)
			events.Push(i)
			sim.Info(r, "EMIT", "value", i)
		}
	})
	if err != nil {
		panic(err)
	}

	type dialArgs struct{ host string }
	dial := sim.NewMock[dialArgs, error](u, "dial")
	dial.EXPECT(sim.Pred("any host", func(dialArgs) bool { return true })).
		Times(sim.AtLeast(1)).
		WillRepeatedly(func(dialArgs) error { return nil })

	_, err = u.Spawn("cons", func(r *sim.Runner) {
		port := sim.NewQueuePort[int](r, "inbox")
		events.Connect(port)

		sw := r.NewStopwatch()
		sw.Start()

		if err := dial.Call(dialArgs{host: "sim://events"}); err != nil {
			sim.Warn(r, "DIAL_FAILED", "err", err)
		}

		for i := 0; i < 3; i++ {
			timedOut := r.WaitForTimeout(port.IsAvailableExpr(), 5*sim.Second)
			sim.Check(r, !timedOut, "RECEIVE_IN_TIME")
			if v, ok := port.Pop(); ok {
				sim.Info(r, "RECV", "value", v)
			}
		}
		sw.Stop()
		sim.Info(r, "ELAPSED", "lap", sw.Lap())
	})
	if err != nil {
		panic(err)
	}

	if err := u.Run(); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
	}
	os.Exit(u.ExitCode())
}
