// Package testutil holds test doubles shared across packages: a manual wall
// clock, a recording dispatcher and a scripted browser launcher.
package testutil
