package compiler

// local tracks one declared local variable's stack slot within the function
// currently being compiled.
type local struct {
	name     string
	depth    int
	captured bool // true once some nested function closes over this slot
}

// upvalue records how a closure's Nth upvalue slot is populated at MAKEFUNC
// time: straight off the enclosing frame's stack (IsLocal) or forwarded from
// the enclosing closure's own upvalue vector.
type upvalue struct {
	isLocal bool
	index   uint8
}

type funcKind int

const (
	kindScript funcKind = iota
	kindFunction
	kindMethod
	kindConstructor
)

// loopCtx tracks the jump-patch bookkeeping for one enclosing loop, so
// break/continue can be compiled before the loop's end address is known.
type loopCtx struct {
	scopeDepth int
	// continueTarget is the address to loop back to for `continue`, known
	// up front for a while loop (the condition re-check). It is -1 for a
	// for loop, where `continue` must jump forward to the not-yet-emitted
	// post clause; those jumps accumulate in continueJumps and are patched
	// once the post clause's address is known.
	continueTarget int
	continueJumps  []int
	breakJumps     []int // patch positions of pending forward jumps for `break`
}

// switchCtx tracks the case-label bookkeeping needed to compile `advance`
// (explicit fallthrough to the next case) and implicit end-of-case jumps.
type switchCtx struct {
	scopeDepth  int
	endJumps    []int // patch positions jumping to the switch's end
	advanceToNextCase []int // patch positions jumping to the next case's start
}
