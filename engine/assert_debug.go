//go:build klondikedebug

package engine

// debugAssertions turns contract violations into panics.
const debugAssertions = true
