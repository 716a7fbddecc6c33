// SPDX-License-Identifier: EPL-2.0

// Package source defines the rewindable PCM producers the mixer reads from.
//
// A Source delivers signed 16-bit samples in host byte order, in chunks:
//
//	src := source.NewFile(os.DirFS("assets"), "sfx/explosion.wav", reg, source.Disk)
//	if err := src.Open(); err != nil {
//	    // asset unavailable
//	}
//	buf := make([]byte, source.ChunkSize)
//	for {
//	    n, err := src.LoadChunk(buf)
//	    if err != nil || n == 0 {
//	        break
//	    }
//	    play(buf[:n])
//	}
//
// File decodes on demand from an fs.FS. Memory holds an already decoded
// image, and Memory.Clone gives every voice of a managed category its own
// read position over the same bytes.
package source
