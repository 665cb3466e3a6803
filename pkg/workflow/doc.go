// Package workflow reads and writes Snowforge workflow files.
//
// A workflow file is a YAML sequence in which every item is tagged with the
// kind of statement it describes:
//
//	- !file_format
//	  name: csv_format
//	  options:
//	    type: csv
//	    skip_header: 1
//	- !stage
//	  name: raw_stage
//	  file_format: csv_format
//	- !table
//	  name: orders
//	  columns:
//	    - name: id
//	      type: NUMBER
//	- !copy_into
//	  into: orders
//	  from: {stage: raw_stage}
//
// Each item decodes into the matching type of the ddl package. The plan
// subpackage orders the statements by their dependencies before they are
// handed to the forge engine.
//
// # Basic Usage
//
//	file, err := workflow.Load("pipeline.yml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	w, err := file.Workflow(engine)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := w.Execute(ctx)
package workflow
