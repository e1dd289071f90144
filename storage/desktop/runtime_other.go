//go:build !desktop

package desktop

const builtForDesktop = false
