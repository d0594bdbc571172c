//go:build !bootdebug

package app

import "simplenp/hal"

func bootStep(hal.HAL, string) {}
