package vm

import (
	"strconv"

	"golang.org/x/arch/x86/x86asm"

	"pintosvm/config"
	"pintosvm/errno"
)

// InterruptedFrame carries the trap context a page fault interrupted: the
// user stack pointer at the time of the fault, and optionally the bytes of
// the faulting instruction, used to refine the stack-growth heuristic
// below.
type InterruptedFrame struct {
	RSP  uintptr
	Code []byte
}

// TryHandleFault is the page-fault entry point: given the faulting address
// and the trap's user/write/not-present flags, it either grows the stack,
// claims a not-yet-resident page, or reports the fault as unrecoverable.
func (as *AddressSpace) TryHandleFault(frame *InterruptedFrame, faultVA uintptr, user, write, notPresent bool) errno.Errno {
	if faultVA == 0 || faultVA >= config.KernelBase {
		return errno.EFAULT
	}
	if notPresent {
		rsp := frame.RSP
		if !user {
			rsp = as.SavedRSP
		}
		slack := instrStackSlack(frame.Code)
		if isStackGrowth(rsp, faultVA, slack) {
			if err := as.stackGrowth(faultVA); err != errno.Ok {
				return err
			}
		}
	}
	as.Stats.addFault()
	page, ok := as.SPT.Find(faultVA)
	if !ok {
		return errno.EFAULT
	}
	if write && !page.Writable {
		return errno.EACCES
	}
	if page.Frame != nil {
		return errno.Ok
	}
	key := strconv.FormatUint(uint64(page.VA), 16)
	_, err, _ := as.faultGroup.Do(key, func() (any, error) {
		if page.Frame != nil {
			return nil, nil
		}
		if e := as.Claim(page); e != errno.Ok {
			return nil, e
		}
		return nil, nil
	})
	if err != nil {
		return err.(errno.Errno)
	}
	return errno.Ok
}

// isStackGrowth recognizes automatic stack growth: a not-present fault at
// or above rsp minus slack bytes (the "push" idiom touches memory below rsp
// before rsp itself moves) and no higher than UserStack, with rsp minus
// slack inside the process's stack cap, is treated as automatic stack
// growth rather than a genuine fault.
func isStackGrowth(rsp, faultVA, slack uintptr) bool {
	lower := uintptr(config.UserStack - config.StackLimit)
	if rsp < slack {
		return false
	}
	rspSlack := rsp - slack
	if rspSlack < lower {
		return false
	}
	if faultVA < rspSlack {
		return false
	}
	return faultVA <= config.UserStack
}

// instrStackSlack decodes the faulting instruction to refine the fixed
// "-8" slack of the classic heuristic: a push-class instruction touches
// memory 8 bytes below rsp before committing the decrement, while most
// other instructions fault at rsp itself. Decode failure or an absent
// instruction falls back to the conservative 8-byte slack.
func instrStackSlack(code []byte) uintptr {
	if len(code) == 0 {
		return 8
	}
	inst, err := x86asm.Decode(code, 64)
	if err != nil {
		return 8
	}
	switch inst.Op {
	case x86asm.PUSH, x86asm.PUSHF, x86asm.PUSHFQ, x86asm.CALL:
		return 8
	default:
		return 0
	}
}

// stackGrowth extends the stack down to cover faultVA, allocating and
// eagerly claiming one anonymous page at a time, and fails with EFAULT
// once doing so would exceed the per-process stack cap.
func (as *AddressSpace) stackGrowth(faultVA uintptr) errno.Errno {
	target := config.RoundDownPage(faultVA)
	if config.UserStack-target > config.StackLimit {
		return errno.EFAULT
	}
	for va := as.stackBottom - config.PageSize; va >= target; va -= config.PageSize {
		if err := as.AllocWithInitializer(KindAnon, va, true, nil, nil); err != errno.Ok {
			return err
		}
		p, _ := as.SPT.Find(va)
		if err := as.Claim(p); err != errno.Ok {
			return err
		}
		as.stackBottom = va
		if va == target {
			break
		}
	}
	return errno.Ok
}
