// Package clock provides an injectable time source so timer-driven code
// (auto-hide timers, minimum-visible gates, queue pauses) can be tested
// deterministically.
//
// Production code uses Real(). Tests use Fake() and move time forward
// with Advance, which fires due AfterFunc callbacks synchronously in
// deadline order.
package clock
