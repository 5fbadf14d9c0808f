/* Package main implements an embeddable interpreter for a practical subset
of C.

The interpreter parses C source -- from a string, a file, or an interactive
prompt -- and executes each statement immediately against a live
global/stack environment: there is no bytecode and no separate compile
phase, a program is executed as it is parsed. This is deliberate: the
design target is small hosts, including bare-metal ones, where an
AST-free, single-pass token walker costs far less code and memory than a
proper compiler front end.

The engine is layered, each layer consuming only the layer beneath it:

  - a string table interns identifiers and short literals, so that name
    equality reduces to pointer equality everywhere above it (symbols.go);
  - a lexer turns a source buffer into a token stream, decoding numeric and
    string literals inline (lexer.go);
  - a type system constructs and interns C types and knows their layout
    (types.go);
  - a value arena and scope/frame stack allocate values on a strictly LIFO
    stack, and manage lexical visibility per frame (internal/valuearena,
    scope.go, value.go);
  - a precedence-climbing expression evaluator walks the token stream,
    applying C's implicit conversions and lvalue/rvalue rules (eval.go);
  - a recursive-descent statement driver walks declarations, control flow,
    and block structure, realizing break/continue/return/goto/case through
    mode switches rather than native non-local control flow (stmt.go);
  - a host bridge registers native functions and platform variables into
    the global scope, and installs registered headers on #include
    (hostbridge.go).

See lexer.go and types.go for the front end, internal/valuearena,
scope.go and value.go for the storage model, eval.go for expression
evaluation, stmt.go for statements and the execution-mode state machine,
and hostbridge.go for embedding.

This is not a conforming C implementation: there is no preprocessor beyond
object/function-like #define and #include, no #if family, no wide
characters, no _Generic, no designated initializers, no variable-length
arrays. Execution speed is traded for code size throughout.
*/
package main
