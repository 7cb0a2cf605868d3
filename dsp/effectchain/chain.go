package effectchain

import (
	"fmt"

	"github.com/cwbudde/realtime-effect-graph/dsp/graph"
)

// Slot describes one position in a Chain's linear effect list.
type Slot struct {
	ID       graph.NodeID
	TypeName string // registry name; empty when added via AddEffect directly
	Bypassed bool
}

// Chain owns a linear effect chain laid out on a *graph.Graph:
// Input -> slot[0] -> slot[1] -> ... -> Output. It recompiles after
// every structural mutation (add, remove, reorder), mirroring the
// teacher's "owns graph + registry, compiles after every mutation"
// shape while dropping its JSON wire format in favor of direct calls.
type Chain struct {
	ctx       Context
	registry  *Registry
	g         *graph.Graph
	blockSize int

	input, output graph.NodeID
	slots         []Slot
}

// New creates an empty Chain wired straight through (Input -> Output)
// at the given sample rate and block size, and compiles it once so
// ProcessBlock is usable immediately.
func New(ctx Context, registry *Registry, blockSize int) (*Chain, error) {
	g := graph.New(ctx.SampleRate, blockSize)

	in := g.AddInput()
	out := g.AddOutput()

	if _, err := g.Connect(in, out); err != nil {
		return nil, fmt.Errorf("effectchain: wire passthrough: %w", err)
	}

	c := &Chain{
		ctx:       ctx,
		registry:  registry,
		g:         g,
		blockSize: blockSize,
		input:     in,
		output:    out,
	}

	if err := c.recompile(); err != nil {
		return nil, err
	}

	return c, nil
}

// Graph exposes the underlying DAG engine for callers that need
// non-linear routing (splits, merges) alongside the chain's slots.
func (c *Chain) Graph() *graph.Graph { return c.g }

// Slots returns the current slot list, in chain order.
func (c *Chain) Slots() []Slot {
	out := make([]Slot, len(c.slots))
	copy(out, c.slots)

	return out
}

func (c *Chain) chainNodes() []graph.NodeID {
	nodes := make([]graph.NodeID, 0, len(c.slots)+2)
	nodes = append(nodes, c.input)

	for _, s := range c.slots {
		nodes = append(nodes, s.ID)
	}

	return append(nodes, c.output)
}

func (c *Chain) disconnectSequential(nodes []graph.NodeID) error {
	for i := 0; i+1 < len(nodes); i++ {
		id, ok := c.g.FindEdge(nodes[i], nodes[i+1])
		if !ok {
			continue
		}

		if err := c.g.Disconnect(id); err != nil {
			return fmt.Errorf("effectchain: disconnect chain link %d: %w", i, err)
		}
	}

	return nil
}

func (c *Chain) connectSequential(nodes []graph.NodeID) error {
	for i := 0; i+1 < len(nodes); i++ {
		if _, err := c.g.Connect(nodes[i], nodes[i+1]); err != nil {
			return fmt.Errorf("effectchain: connect chain link %d: %w", i, err)
		}
	}

	return nil
}

func (c *Chain) recompile() error {
	_, err := graph.Compile(c.g)
	if err != nil {
		return fmt.Errorf("effectchain: compile: %w", err)
	}

	return nil
}

// AddEffect appends a ready-made effect instance to the end of the
// chain, matching spec's add_effect(instance) entry point directly.
func (c *Chain) AddEffect(instance graph.Effect) (graph.NodeID, error) {
	return c.addSlot(instance, "")
}

// AddEffectByType builds an effect instance from the registry by name
// and appends it to the end of the chain.
func (c *Chain) AddEffectByType(name string, p Params) (graph.NodeID, error) {
	instance, err := c.registry.Build(name, c.ctx, p)
	if err != nil {
		return 0, err
	}

	return c.addSlot(instance, name)
}

func (c *Chain) addSlot(instance graph.Effect, typeName string) (graph.NodeID, error) {
	old := c.chainNodes()
	if err := c.disconnectSequential(old); err != nil {
		return 0, err
	}

	id := c.g.AddEffect(instance)
	c.slots = append(c.slots, Slot{ID: id, TypeName: typeName})

	if err := c.connectSequential(c.chainNodes()); err != nil {
		return 0, err
	}

	if err := c.recompile(); err != nil {
		return 0, err
	}

	return id, nil
}

// RemoveAt removes the slot at index, splicing its neighbors together.
func (c *Chain) RemoveAt(index int) error {
	if index < 0 || index >= len(c.slots) {
		return fmt.Errorf("effectchain: slot index %d out of range [0,%d)", index, len(c.slots))
	}

	old := c.chainNodes()
	if err := c.disconnectSequential(old); err != nil {
		return err
	}

	id := c.slots[index].ID
	c.slots = append(c.slots[:index], c.slots[index+1:]...)

	if err := c.g.RemoveNode(id); err != nil {
		return fmt.Errorf("effectchain: remove slot %d: %w", index, err)
	}

	if err := c.connectSequential(c.chainNodes()); err != nil {
		return err
	}

	return c.recompile()
}

// Reorder moves the slot at from to position to, shifting the slots
// between them.
func (c *Chain) Reorder(from, to int) error {
	n := len(c.slots)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("effectchain: reorder index out of range [0,%d)", n)
	}

	if from == to {
		return nil
	}

	old := c.chainNodes()
	if err := c.disconnectSequential(old); err != nil {
		return err
	}

	s := c.slots[from]
	c.slots = append(c.slots[:from], c.slots[from+1:]...)

	rest := make([]Slot, len(c.slots))
	copy(rest, c.slots)
	c.slots = append(rest[:to], append([]Slot{s}, rest[to:]...)...)

	if err := c.connectSequential(c.chainNodes()); err != nil {
		return err
	}

	return c.recompile()
}

// SetBypass toggles one slot's bypass crossfade. No recompile is
// needed: bypass is a per-node runtime state the executor reads live,
// not a topology change.
func (c *Chain) SetBypass(index int, bypassed bool) error {
	if index < 0 || index >= len(c.slots) {
		return fmt.Errorf("effectchain: slot index %d out of range [0,%d)", index, len(c.slots))
	}

	c.g.SetBypass(c.slots[index].ID, bypassed)
	c.slots[index].Bypassed = bypassed

	return nil
}

// ProcessBlock runs one block of audio through the chain's graph.
func (c *Chain) ProcessBlock(in, out graph.StereoBlock) error {
	return c.g.ProcessBlock(in, out)
}

// Reset clears every effect's internal state and any in-progress
// crossfade, without touching topology.
func (c *Chain) Reset() { c.g.Reset() }

// SetSampleRate updates the chain's sample rate and propagates it to
// every effect instance.
func (c *Chain) SetSampleRate(sampleRate float64) error {
	if err := c.g.SetSampleRate(sampleRate); err != nil {
		return err
	}

	c.ctx.SampleRate = sampleRate

	return nil
}

// LatencySamples reports the chain's total compiled latency.
func (c *Chain) LatencySamples() int { return c.g.LatencySamples() }

// SetTempoContext broadcasts bpm/time-signature hints to every slot whose
// effect opts into graph.TempoAware.
func (c *Chain) SetTempoContext(ctx graph.TempoContext) {
	c.g.SetTempoContext(ctx)
}

// SlotSnapshot captures one slot's registry identity, exposed parameter
// values (if the effect implements graph.Parameterized), and bypass flag.
type SlotSnapshot struct {
	TypeName string
	Params   []float64
	Bypassed bool
}

// ChainSnapshot is a capture of a Chain's linear topology, suitable for
// persisting a preset and restoring it later via Chain.Restore.
type ChainSnapshot struct {
	Slots []SlotSnapshot
}

// Snapshot captures the current chain state. Slots added via AddEffect
// (no registry name) snapshot with an empty TypeName and cannot be
// rebuilt by Restore; callers that need presets should build every
// slot through AddEffectByType.
func (c *Chain) Snapshot() ChainSnapshot {
	snap := ChainSnapshot{Slots: make([]SlotSnapshot, len(c.slots))}

	for i, s := range c.slots {
		ss := SlotSnapshot{TypeName: s.TypeName, Bypassed: s.Bypassed}

		if p, ok := c.g.Effect(s.ID).(graph.Parameterized); ok {
			access := p.Params()
			ss.Params = make([]float64, access.ParamCount())

			for k := range ss.Params {
				ss.Params[k] = access.ParamValue(k)
			}
		}

		snap.Slots[i] = ss
	}

	return snap
}

// Restore rebuilds the chain from a snapshot, discarding the current
// slots. Each slot is reconstructed via its registry TypeName with
// default parameters, then any captured parameter values and the
// bypass flag are reapplied.
func (c *Chain) Restore(snap ChainSnapshot) error {
	for len(c.slots) > 0 {
		if err := c.RemoveAt(len(c.slots) - 1); err != nil {
			return fmt.Errorf("effectchain: restore: clear slot: %w", err)
		}
	}

	for i, ss := range snap.Slots {
		id, err := c.AddEffectByType(ss.TypeName, Params{})
		if err != nil {
			return fmt.Errorf("effectchain: restore: slot %d: %w", i, err)
		}

		if p, ok := c.g.Effect(id).(graph.Parameterized); ok {
			access := p.Params()
			for k, v := range ss.Params {
				access.SetParamValue(k, v)
			}
		}

		if ss.Bypassed {
			if err := c.SetBypass(len(c.slots)-1, true); err != nil {
				return fmt.Errorf("effectchain: restore: slot %d bypass: %w", i, err)
			}
		}
	}

	return nil
}
