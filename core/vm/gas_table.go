package vm

// gas_table.go documents the fork history the constants in gas.go collapse.
// The teacher's GasTableExt (core/vm/gas_table_ext.go) keeps one struct per
// fork (Berlin, Glamsterdam, ...) and selects between them with
// SelectGasTableExt(rules ForkRules); coreevm targets a single point in that
// history -- the post-Cancun schedule -- so gas.go's constants are simply
// that one table's values inlined, and NewCancunJumpTable (jump_table.go)
// is the only table this package builds.
//
// Pre-Berlin gas pricing (flat SLOAD/BALANCE/EXTCODESIZE/EXTCODEHASH/CALL
// account-access costs, no cold/warm split) is out of scope: a host running
// historical blocks against an older fork's rules would plug in a second
// JumpTable/gas-constant-set pair built the same way this one is, keyed by
// its own ForkRules-equivalent selection, and register it instead of
// NewCancunJumpTable. Nothing here prevents that; it is simply not wired
// because coreevm has only ever needed to execute the current schedule.
