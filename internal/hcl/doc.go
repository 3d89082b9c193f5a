// Package hcl loads graph definitions written in HCL and translates them into
// the format-agnostic config.Model.
//
// A definition file declares nodes and the edges between them:
//
//	node "input" "name" {
//	  position = [0, 0]
//	  contents {
//	    output = "hello"
//	  }
//	}
//
//	node "prompt" "greet" {
//	  contents {
//	    prompt = "Say {x}"
//	  }
//	}
//
//	edge {
//	  from = "name.input"
//	  to   = "greet.x"
//	}
//
// Any number of files may contribute blocks; directories are walked for
// .hcl files.
package hcl
