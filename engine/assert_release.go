//go:build !klondikedebug

package engine

const debugAssertions = false
