// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

// Command dsfctl is a thin CLI harness over the dsf-core codec: a
// demonstration and debugging tool, not where the library's
// semantics live.
package main

func main() {
	Execute()
}
