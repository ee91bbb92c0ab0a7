package graph_test

import (
	"context"
	"errors"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/wayfarerhq/wayfarer/pkg/graph"
)

func TestGraph(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Graph Suite")
}

// testState is a minimal mutable state for exercising the executor.
type testState struct {
	trail    []string
	attempts int
	ready    bool
}

func record(name string, signal graph.Signal) graph.NodeFunc[*testState] {
	return func(_ context.Context, s *testState) (*testState, graph.Signal, error) {
		s.trail = append(s.trail, name)
		return s, signal, nil
	}
}

var _ = Describe("Executor", func() {
	var (
		ctx    context.Context
		events []graph.Event
		sink   graph.EventSink
	)

	BeforeEach(func() {
		ctx = context.Background()
		events = nil
		sink = func(ev graph.Event) { events = append(events, ev) }
	})

	Describe("linear execution", func() {
		It("runs nodes in edge order and emits one event per node", func() {
			g := graph.New[*testState]("a")
			g.AddNode("a", record("a", graph.Next()))
			g.AddNode("b", record("b", graph.Next()))
			g.AddNode("c", record("c", graph.Terminal("done")))
			g.AddEdge("a", "b")
			g.AddEdge("b", "c")

			ex := graph.NewExecutor(g, graph.ExecutorConfig{})
			s, result, err := ex.Run(ctx, &testState{}, sink)

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Kind).To(Equal(graph.Completed))
			Expect(result.Outcome).To(Equal("done"))
			Expect(s.trail).To(Equal([]string{"a", "b", "c"}))

			Expect(events).To(HaveLen(3))
			Expect(events[0].Node).To(Equal("a"))
			Expect(events[1].Node).To(Equal("b"))
			Expect(events[2].Node).To(Equal("c"))
			Expect(events[2].Seq).To(Equal(2))
		})

		It("completes when an edge reaches End", func() {
			g := graph.New[*testState]("a")
			g.AddNode("a", record("a", graph.Next()))
			g.AddEdge("a", graph.End)

			ex := graph.NewExecutor(g, graph.ExecutorConfig{})
			_, result, err := ex.Run(ctx, &testState{}, nil)

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Kind).To(Equal(graph.Completed))
			Expect(result.Outcome).To(BeEmpty())
		})
	})

	Describe("conditional routing", func() {
		newGate := func() *graph.Graph[*testState] {
			g := graph.New[*testState]("gate")
			g.AddNode("gate", record("gate", graph.Next()))
			g.AddNode("yes", record("yes", graph.Terminal("yes")))
			g.AddNode("no", record("no", graph.Terminal("no")))
			g.AddConditionalEdge("gate",
				func(s *testState) string {
					if s.ready {
						return "go"
					}
					return "stop"
				},
				map[string]string{"go": "yes", "stop": "no"},
				"no",
			)
			return g
		}

		It("routes on the state the node just produced", func() {
			ex := graph.NewExecutor(newGate(), graph.ExecutorConfig{})
			_, result, err := ex.Run(ctx, &testState{ready: true}, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Outcome).To(Equal("yes"))

			_, result, err = ex.Run(ctx, &testState{ready: false}, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Outcome).To(Equal("no"))
		})

		It("takes the same path for identical state", func() {
			ex := graph.NewExecutor(newGate(), graph.ExecutorConfig{})
			first, _, err := ex.Run(ctx, &testState{ready: true}, nil)
			Expect(err).NotTo(HaveOccurred())
			second, _, err := ex.Run(ctx, &testState{ready: true}, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(second.trail).To(Equal(first.trail))
		})
	})

	Describe("bounded cycles", func() {
		// work <-> check cycle that would loop forever without the cap:
		// check always routes back to work.
		newLoop := func() *graph.Graph[*testState] {
			g := graph.New[*testState]("work")
			g.AddNode("work", func(_ context.Context, s *testState) (*testState, graph.Signal, error) {
				s.trail = append(s.trail, "work")
				s.attempts++
				return s, graph.Next(), nil
			})
			g.AddNode("check", record("check", graph.Next()))
			g.AddNode("finish", record("finish", graph.Terminal("degraded")))
			g.AddEdge("work", "check")
			g.AddConditionalEdge("check",
				func(_ *testState) string { return "again" },
				map[string]string{"again": "work"},
				"finish",
			)
			return g
		}

		It("forces the fallback edge once the routed target is at its cap", func() {
			ex := graph.NewExecutor(newLoop(), graph.ExecutorConfig{MaxVisits: 3})
			s, result, err := ex.Run(ctx, &testState{}, sink)

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Kind).To(Equal(graph.Completed))
			Expect(result.Outcome).To(Equal("degraded"))
			Expect(s.attempts).To(Equal(3))
			Expect(s.trail[len(s.trail)-1]).To(Equal("finish"))
		})

		It("defaults the visit cap when unset", func() {
			ex := graph.NewExecutor(newLoop(), graph.ExecutorConfig{})
			s, result, err := ex.Run(ctx, &testState{}, nil)

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Kind).To(Equal(graph.Completed))
			Expect(s.attempts).To(Equal(graph.DefaultMaxVisits))
		})

		It("errors on a cycle with no fallback instead of spinning", func() {
			g := graph.New[*testState]("a")
			g.AddNode("a", record("a", graph.Next()))
			g.AddNode("b", record("b", graph.Next()))
			g.AddEdge("a", "b")
			g.AddEdge("b", "a")

			ex := graph.NewExecutor(g, graph.ExecutorConfig{MaxVisits: 2})
			_, _, err := ex.Run(ctx, &testState{}, nil)
			Expect(err).To(MatchError(graph.ErrStepLimit))
		})
	})

	Describe("suspension", func() {
		It("ends the run immediately with the suspend reason", func() {
			g := graph.New[*testState]("a")
			g.AddNode("a", record("a", graph.Suspend("awaiting_profile")))
			g.AddNode("never", record("never", graph.Terminal("done")))
			g.AddEdge("a", "never")

			ex := graph.NewExecutor(g, graph.ExecutorConfig{})
			s, result, err := ex.Run(ctx, &testState{}, sink)

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Kind).To(Equal(graph.Suspended))
			Expect(result.Outcome).To(Equal("awaiting_profile"))
			Expect(s.trail).To(Equal([]string{"a"}))
			Expect(events).To(HaveLen(1))
		})
	})

	Describe("node failure", func() {
		It("halts with the classified failure kind", func() {
			g := graph.New[*testState]("a")
			g.AddNode("a", record("a", graph.Next()))
			g.AddNode("b", func(_ context.Context, s *testState) (*testState, graph.Signal, error) {
				return s, graph.Signal{}, graph.Failf("translation_error", "upstream said no")
			})
			g.AddEdge("a", "b")

			ex := graph.NewExecutor(g, graph.ExecutorConfig{})
			_, result, err := ex.Run(ctx, &testState{}, sink)

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Kind).To(Equal(graph.Failed))
			Expect(result.FailKind).To(Equal("translation_error"))
			Expect(result.Detail).To(ContainSubstring("upstream said no"))

			// No event for the failed node.
			Expect(events).To(HaveLen(1))
			Expect(events[0].Node).To(Equal("a"))
		})

		It("classifies unwrapped errors as node_error", func() {
			g := graph.New[*testState]("a")
			g.AddNode("a", func(_ context.Context, s *testState) (*testState, graph.Signal, error) {
				return s, graph.Signal{}, errors.New("boom")
			})

			ex := graph.NewExecutor(g, graph.ExecutorConfig{})
			_, result, err := ex.Run(ctx, &testState{}, nil)

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Kind).To(Equal(graph.Failed))
			Expect(result.FailKind).To(Equal("node_error"))
		})
	})

	Describe("cancellation", func() {
		It("abandons the run between node boundaries", func() {
			runCtx, cancel := context.WithCancel(ctx)

			g := graph.New[*testState]("a")
			g.AddNode("a", func(_ context.Context, s *testState) (*testState, graph.Signal, error) {
				s.trail = append(s.trail, "a")
				cancel()
				return s, graph.Next(), nil
			})
			g.AddNode("b", record("b", graph.Terminal("done")))
			g.AddEdge("a", "b")

			ex := graph.NewExecutor(g, graph.ExecutorConfig{})
			s, result, err := ex.Run(runCtx, &testState{}, sink)

			Expect(err).To(MatchError(context.Canceled))
			Expect(result.Kind).To(Equal(graph.Abandoned))
			Expect(s.trail).To(Equal([]string{"a"}))
			Expect(events).To(HaveLen(1))
		})
	})

	Describe("wiring errors", func() {
		It("errors on an edge to an unregistered node", func() {
			g := graph.New[*testState]("a")
			g.AddNode("a", record("a", graph.Next()))
			g.AddEdge("a", "ghost")

			ex := graph.NewExecutor(g, graph.ExecutorConfig{})
			_, _, err := ex.Run(ctx, &testState{}, nil)
			Expect(err).To(MatchError(graph.ErrUnknownNode))
		})

		It("errors on a continuing node with no outgoing edge", func() {
			g := graph.New[*testState]("a")
			g.AddNode("a", record("a", graph.Next()))

			ex := graph.NewExecutor(g, graph.ExecutorConfig{})
			_, _, err := ex.Run(ctx, &testState{}, nil)
			Expect(err).To(MatchError(graph.ErrNoEdge))
		})

		It("errors on a route label with no target", func() {
			g := graph.New[*testState]("a")
			g.AddNode("a", record("a", graph.Next()))
			g.AddNode("b", record("b", graph.Terminal("done")))
			g.AddConditionalEdge("a",
				func(_ *testState) string { return "elsewhere" },
				map[string]string{"known": "b"},
				"b",
			)

			ex := graph.NewExecutor(g, graph.ExecutorConfig{})
			_, _, err := ex.Run(ctx, &testState{}, nil)
			Expect(err).To(MatchError(graph.ErrNoRoute))
		})
	})
})
