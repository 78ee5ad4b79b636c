// Copyright (c) 2026 PIMS Archive. All rights reserved.
// Author: PIMS archive team

package pointer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pims-archive/pims/pkg/pointer"
)

func TestToAndVal(t *testing.T) {
	summary := pointer.To("Marchers gathered downtown")
	assert.Equal(t, "Marchers gathered downtown", pointer.Val(summary))

	var missing *int
	assert.Zero(t, pointer.Val(missing))
}
