// Package rotor implements the mutable rotor instance of the simulator: a
// permutation-carrying wheel mounted in a machine slot with a ring offset,
// a current displacement, and an optional reversed insertion.
//
// Copyright (c) 2025 David Duarte
// Licensed under the MIT License
package rotor

import (
	"fmt"

	"github.com/go-rotorsim/rotorsim/pkg/perm"
)

// NotchRing is a bit-vector of length N marking the positions that trigger
// stepping of a neighbouring wheel. The pawl rides on the ring, not on the
// wheel face, so notch tests consult displacement, not the window letter.
type NotchRing struct {
	id   string
	bits []bool
}

// NewNotchRing builds a notch ring from the indices (alphabet positions)
// that are active.
func NewNotchRing(id string, size int, active []int) NotchRing {
	bits := make([]bool, size)
	for _, a := range active {
		if a >= 0 && a < size {
			bits[a] = true
		}
	}
	return NotchRing{id: id, bits: bits}
}

// ID returns the notch ring's identifier.
func (n NotchRing) ID() string { return n.id }

// Active reports whether the ring is raised at the given displacement.
func (n NotchRing) Active(displacement int) bool {
	size := len(n.bits)
	if size == 0 {
		return false
	}
	return n.bits[((displacement%size)+size)%size]
}

// Bits returns a copy of the notch ring's bit-vector.
func (n NotchRing) Bits() []bool {
	return append([]bool(nil), n.bits...)
}

// Descriptor is the immutable rotor-set entry a Rotor instance is built
// from: a wiring permutation, an id and a display name.
type Descriptor struct {
	ID          string
	Perm        *perm.Permutation
	DisplayName string
}

// Rotor is the mutable instance of a rotor mounted in a machine slot.
type Rotor struct {
	descriptorID     string
	ringID           string
	size             int
	base             *perm.Permutation // descriptor wiring, reversed if insertedReversed
	baseInv          *perm.Permutation
	ring             NotchRing
	ringOffset       int
	displacement     int
	insertedReversed bool
}

// New creates a rotor instance from a descriptor and a notch ring, both
// looked up by the caller in the active rotor set.
func New(desc Descriptor, ring NotchRing) *Rotor {
	r := &Rotor{
		descriptorID: desc.ID,
		ringID:       ring.ID(),
		size:         desc.Perm.Len(),
		ring:         ring,
	}
	r.setWiring(desc.Perm, false)
	return r
}

func (r *Rotor) setWiring(base *perm.Permutation, reversed bool) {
	r.insertedReversed = reversed
	if reversed {
		r.base = base.Reverse()
	} else {
		r.base = base.Clone()
	}
	r.baseInv = r.base.Inverse()
}

// DescriptorID returns the rotor id this instance was built from.
func (r *Rotor) DescriptorID() string { return r.descriptorID }

// RingID returns the notch ring id currently mounted.
func (r *Rotor) RingID() string { return r.ringID }

// BaseVector returns the rotor's current wiring (after any reversed
// insertion has already been applied) as a plain integer vector, used by
// the state codec to cache a self-contained copy of the wiring in effect.
func (r *Rotor) BaseVector() []int { return r.base.ToIntVector() }

// RingBits returns the mounted notch ring's bit-vector.
func (r *Rotor) RingBits() []bool { return r.ring.Bits() }

// Size returns N, the alphabet size this rotor operates over.
func (r *Rotor) Size() int { return r.size }

// InsertedReversed reports whether the wheel is physically flipped.
func (r *Rotor) InsertedReversed() bool { return r.insertedReversed }

// SetInsertedReversed flips the wiring used for Forward/Backward between the
// descriptor permutation and its reverse.
func (r *Rotor) SetInsertedReversed(desc Descriptor, reversed bool) {
	r.setWiring(desc.Perm, reversed)
}

// SetDescriptor re-mounts the instance onto a different rotor-set entry,
// replacing its wiring while leaving ring offset, displacement and
// reversed-insertion state untouched, the operation a `set_rotor_set_state`
// call performs when the operator swaps which wheel sits in a slot.
func (r *Rotor) SetDescriptor(desc Descriptor) {
	r.descriptorID = desc.ID
	r.size = desc.Perm.Len()
	r.setWiring(desc.Perm, r.insertedReversed)
}

// SetRing re-mounts a different notch ring onto the instance, the operation
// behind the `notchselect`/`ringselect` configuration keys on machines that
// offer several selectable notch rings per slot (KL7, Nema).
func (r *Rotor) SetRing(ring NotchRing) {
	r.ringID = ring.ID()
	r.ring = ring
}

// RingOffset returns the current ring offset.
func (r *Rotor) RingOffset() int { return r.ringOffset }

// SetRingOffset sets the ring offset without changing the physical
// displacement, so it changes the window letter but not the effective
// permutation, matching the real machine's ring-setting mechanism.
func (r *Rotor) SetRingOffset(offset int) {
	r.ringOffset = mod(offset, r.size)
}

// Displacement returns the rotor's current physical rotation.
func (r *Rotor) Displacement() int { return r.displacement }

// SetDisplacement sets the rotor's physical rotation directly.
func (r *Rotor) SetDisplacement(d int) {
	r.displacement = mod(d, r.size)
}

// SetWindow sets the displacement so that the given window position (what
// the operator would dial in) is shown, honouring the invariant
// displacement = (window + ring_offset) mod N.
func (r *Rotor) SetWindow(window int) {
	r.displacement = mod(window+r.ringOffset, r.size)
}

// Window returns the current window position (displacement - ring_offset).
func (r *Rotor) Window() int {
	return mod(r.displacement-r.ringOffset, r.size)
}

// WindowLetter returns the symbol shown to the operator at the display
// window.
func (r *Rotor) WindowLetter() (rune, error) {
	return r.base.IndexToRune(r.Window())
}

// WindowIndexOf converts a window letter to its alphabet index, the
// inverse of WindowLetter, for callers parsing an operator-entered
// position string.
func (r *Rotor) WindowIndexOf(letter rune) (int, error) {
	return r.base.RuneToIndex(letter)
}

// Step advances the displacement by one, the rotor-level primitive the
// stepping gear calls once per tick for every rotor it decides to move.
func (r *Rotor) Step() {
	r.displacement = mod(r.displacement+1, r.size)
}

// AtNotch reports whether the notch ring is active at the current
// displacement.
func (r *Rotor) AtNotch() bool {
	return r.ring.Active(r.displacement)
}

// Forward applies the effective permutation P_eff(i) = (perm[(i+d) mod N] - d) mod N.
func (r *Rotor) Forward(i int) int {
	adj := mod(i+r.displacement, r.size)
	return mod(r.base.At(adj)-r.displacement, r.size)
}

// Backward applies the inverse of the effective permutation.
func (r *Rotor) Backward(i int) int {
	adj := mod(i+r.displacement, r.size)
	return mod(r.baseInv.At(adj)-r.displacement, r.size)
}

// EffectivePermutation materialises P_eff as a standalone Permutation, used
// by the stepping gear when composing the full rotor stack.
func (r *Rotor) EffectivePermutation(alphabet string) *perm.Permutation {
	vec := make([]int, r.size)
	for i := 0; i < r.size; i++ {
		vec[i] = r.Forward(i)
	}
	p, err := perm.New(alphabet, vec)
	if err != nil {
		// Forward() is a bijection by construction, so this can only
		// indicate a mismatched alphabet passed by the caller.
		panic(fmt.Sprintf("rotor: effective permutation is not a bijection: %v", err))
	}
	return p
}

// Clone returns a deep copy of the rotor instance.
func (r *Rotor) Clone() *Rotor {
	clone := *r
	clone.base = r.base.Clone()
	clone.baseInv = r.baseInv.Clone()
	return &clone
}

func mod(v, n int) int {
	return ((v % n) + n) % n
}
