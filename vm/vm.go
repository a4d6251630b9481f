package vm

import (
	"context"

	"github.com/sirupsen/logrus"
)

// VM is one LC-3 machine: memory, register file and console. A VM is not
// safe for concurrent use.
type VM struct {
	Verbose bool               // If set, every instruction is logged at debug level.
	Log     logrus.FieldLogger // Destination of load and trace logs.

	cpu *cpu
}

// State is a snapshot of the register file and run status.
type State struct {
	Registers [RegisterCount]uint16
	PC        uint16
	Cond      Flag
	Count     uint64 // instructions executed
	Halted    bool
}

// NewVM creates a machine wired to console, with PC at the start of user
// space and the condition flag set to Z.
func NewVM(console Console) *VM {
	log := logrus.StandardLogger()
	return &VM{
		Log: log,
		cpu: newCpu(console, log),
	}
}

func (vm *VM) sync() {
	vm.cpu.verbose = vm.Verbose
	vm.cpu.log = vm.Log
}

// Run executes instructions until HALT, a fault or ctx is done. A HALT
// returns nil. Cancelling ctx also wakes a program blocked on the keyboard;
// the interrupted instruction is rewound so a later Run executes it again.
func (vm *VM) Run(ctx context.Context) error {
	vm.sync()

	vm.cpu.running = true
	defer vm.Stop()

	for vm.cpu.running {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := vm.cpu.step(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Step executes exactly one instruction.
func (vm *VM) Step() error {
	vm.sync()
	return vm.cpu.step(context.Background())
}

// Stop ends a Run after the instruction in progress. It does not halt the
// machine; a later Run resumes at PC.
func (vm *VM) Stop() {
	vm.cpu.running = false
}

// Halted reports whether the machine executed HALT.
func (vm *VM) Halted() bool {
	return vm.cpu.halted
}

// Err returns the fault that stopped the machine, if any.
func (vm *VM) Err() error {
	return vm.cpu.fault
}

// SetPC moves the program counter, typically before the first Run.
func (vm *VM) SetPC(addr uint16) {
	vm.cpu.regs.pc = addr
}

// Peek reads memory without triggering device registers.
func (vm *VM) Peek(addr uint16) uint16 {
	return vm.cpu.memory.peek(addr)
}

// Poke writes memory without triggering device registers.
func (vm *VM) Poke(addr, value uint16) {
	vm.cpu.memory.poke(addr, value)
}

func (vm *VM) State() State {
	return State{
		Registers: vm.cpu.regs.gpr,
		PC:        vm.cpu.regs.pc,
		Cond:      vm.cpu.regs.cond,
		Count:     vm.cpu.count,
		Halted:    vm.cpu.halted,
	}
}
