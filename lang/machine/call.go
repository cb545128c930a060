package machine

import "github.com/holoscript/holo/lang/heap"

// callValue implements the shared calling convention every call-shaped
// opcode (call, invoke, super_invoke, launch_async, and a module's implicit
// top-level invocation) reduces to: the stack already holds the callee at
// base followed by argc arguments (spec.md §4.3 "Before a call, the stack
// holds the callee followed by N arguments"). What callValue does depends
// on the callee's kind:
//   - Closure: arity-checked, a new frame is pushed with slot-base = base.
//   - NativeFn: called immediately; -1 arity means variadic.
//   - Class: constructs a new Instance, overwrites the callee slot with it
//     (so slot 0 is the receiver for an implicit constructor call), and
//     either runs a same-named method as constructor or, with no args and
//     no such method, finishes immediately.
//   - BoundMethod: the receiver replaces the callee slot and the call
//     proceeds against the bound Closure.
func (th *Thread) callValue(callee heap.Value, argc, base int) error {
	if !callee.IsObj() {
		return th.runtimeError("value not callable: %s", callee.String())
	}
	switch c := callee.AsObj().(type) {
	case *heap.Closure:
		proto := c.Fn.Proto
		if argc != proto.Arity {
			return th.runtimeError("%s: expected %d argument(s), got %d", c.String(), proto.Arity, argc)
		}
		return th.pushFrame(Frame{Closure: c, base: base})

	case *heap.NativeFn:
		if c.Arity >= 0 && argc != c.Arity {
			return th.runtimeError("%s: expected %d argument(s), got %d", c.String(), c.Arity, argc)
		}
		args := append([]heap.Value(nil), th.stack[base+1:base+1+argc]...)
		result, err := c.Fn(args)
		if err != nil {
			return th.runtimeError("%s", err)
		}
		th.sp = base
		return th.push(result)

	case *heap.Class:
		inst := th.m.alloc(th, heap.NewInstance(c)).(*heap.Instance)
		th.stack[base] = heap.Obj(inst)
		if ctor, ok := c.Methods.Get(c.Name); ok {
			if argc != ctor.Fn.Proto.Arity {
				return th.runtimeError("%s: expected %d argument(s), got %d", c.String(), ctor.Fn.Proto.Arity, argc)
			}
			return th.pushFrame(Frame{Closure: ctor, base: base})
		}
		if argc > 0 {
			return th.runtimeError("calling class %q with arguments but no constructor", c.Name)
		}
		th.sp = base + 1
		return nil

	case *heap.BoundMethod:
		th.stack[base] = c.Receiver
		return th.callValue(heap.Obj(c.Method), argc, base)

	default:
		return th.runtimeError("value not callable: %s", callee.String())
	}
}

// launchAsync implements the launch_async opcode (spec.md §4.3, §5): the
// callee+args already sit on the stack exactly as OpCall expects them, but
// instead of running the call on this thread, a new child Thread is
// registered, given its own copy of the callee+args, and set running in a
// goroutine; the future it resolves into replaces the callee+args span on
// this thread's stack.
func (th *Thread) launchAsync(argc int) error {
	base := th.sp - argc - 1
	callee := th.stack[base]
	args := append([]heap.Value(nil), th.stack[base+1:base+1+argc]...)
	th.sp = base

	future := th.m.alloc(th, heap.NewFuture()).(*heap.Future)
	if err := th.push(heap.Obj(future)); err != nil {
		return err
	}

	child := th.m.newThread()
	th.m.registerThread(child)
	go func() {
		defer th.m.unregisterThread(child)
		childBase := child.sp
		if err := child.push(callee); err != nil {
			future.Resolve(heap.Nil, err)
			return
		}
		for _, a := range args {
			if err := child.push(a); err != nil {
				future.Resolve(heap.Nil, err)
				return
			}
		}
		if err := child.callValue(callee, len(args), childBase); err != nil {
			future.Resolve(heap.Nil, err)
			return
		}
		result, err := child.run()
		future.Resolve(result, err)
	}()
	return nil
}
