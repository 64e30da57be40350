// Package reveal sequences the scroll-triggered animations of the portfolio
// page.
//
// Each page region is a Section. A Section subscribes to visibility updates
// for its element, fires the first time the visible ratio reaches its
// threshold, detaches, and starts its Programs: staggered reveals, counting
// skill rings and the typed roles line. A Section never re-arms, so every
// program runs at most once per page load.
//
// The host is abstracted behind Document, Scheduler and Observer. Page,
// VirtualClock and Viewport implement them in memory for tests and for
// revealctl; LoopScheduler runs programs against the wall clock.
package reveal
