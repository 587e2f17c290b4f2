// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package graphchat

// SchemaDescription is the authoritative, versioned description of the
// code knowledge graph served to the model by the get_schema tool. It is
// a compile-time constant: every call observes identical bytes, so the
// model can cache its understanding across a conversation.
const SchemaDescription = `Code Knowledge Graph Schema (v2)

Node tables:
  CodeNode(id STRING PRIMARY KEY, name STRING, kind STRING,
           file_path STRING, start_line INT64, end_line INT64,
           embedding FLOAT[384])
    kind is one of: function, method, class, interface, struct,
    module, file, variable, constant.

  Repository(id STRING PRIMARY KEY, name STRING, root_path STRING)

Relationship tables:
  CALLS      (FROM CodeNode TO CodeNode)  -- caller invokes callee
  DEFINES    (FROM CodeNode TO CodeNode)  -- container declares member
  IMPORTS    (FROM CodeNode TO CodeNode)  -- file/module imports another
  EXTENDS    (FROM CodeNode TO CodeNode)  -- subclass to superclass
  IMPLEMENTS (FROM CodeNode TO CodeNode)  -- type to interface
  CONTAINS   (FROM Repository TO CodeNode)

Query language: Cypher (read-only).
Examples:
  MATCH (n:CodeNode {kind: 'function'}) RETURN n.name, n.file_path LIMIT 20
  MATCH (a:CodeNode)-[:CALLS]->(b:CodeNode {name: 'parseConfig'})
    RETURN a.name, a.file_path
  MATCH (n:CodeNode) WHERE n.embedding IS NOT NULL
    RETURN n.name ORDER BY array_distance(n.embedding, {{VECTOR}}) LIMIT 5

Vector queries must use the {{VECTOR}} placeholder; it is replaced with
a typed literal CAST([...] AS FLOAT[384]) before execution.`
