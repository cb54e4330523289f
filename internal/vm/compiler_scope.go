package vm

import "github.com/Gabrial-8467/falcon/internal/ast"

// decideMode reports whether fn can compile as a CodeBacked (bytecode)
// function: true if none of the names it reads or assigns that aren't
// declared somewhere inside its own body resolve to a local in any
// enclosing compiler's scope. A name left unresolved anywhere in the
// enclosing chain is assumed to be a global, which both executors share,
// so it never forces the AST fallback.
func decideMode(fn *ast.FunctionExpr, enclosing *Compiler) bool {
	if hasComplexPattern(fn.Body.Body) {
		return false
	}
	free := collectFree(fn)
	for name := range free {
		if name == fn.Name {
			// A named function's own name is never a frame-local — see
			// compileStmt's FunctionStmt case — so a recursive self-call
			// always resolves through the VM globals, regardless of what
			// the enclosing scopes hold under the same name.
			continue
		}
		for anc := enclosing; anc != nil; anc = anc.enclosing {
			if _, ok := anc.resolveLocal(name); ok {
				return false
			}
		}
	}
	return true
}

// hasComplexPattern reports whether stmts directly contain a match arm
// pattern the bytecode compiler doesn't lower (list/tuple/dict/or
// destructuring), or a throw/try-catch statement — the bytecode compiler
// has no catchable-exception opcode and no first-class pattern matcher,
// so a function built from either is compiled AST-backed instead, the
// same way a closure is. Does not recurse into nested function literals —
// their own mode is decided independently.
func hasComplexPattern(stmts []ast.Stmt) bool {
	for _, stmt := range stmts {
		if stmtHasComplexPattern(stmt) {
			return true
		}
	}
	return false
}

func isComplexPattern(p ast.Pattern) bool {
	switch p.(type) {
	case *ast.ListPattern, *ast.TuplePattern, *ast.DictPattern, *ast.OrPattern:
		return true
	default:
		return false
	}
}

func stmtHasComplexPattern(stmt ast.Stmt) bool {
	switch st := stmt.(type) {
	case *ast.BlockStmt:
		return hasComplexPattern(st.Body)
	case *ast.IfStmt:
		if stmtHasComplexPattern(st.Then) {
			return true
		}
		return st.Else != nil && stmtHasComplexPattern(st.Else)
	case *ast.WhileStmt:
		return stmtHasComplexPattern(st.Body)
	case *ast.ForStmt:
		return hasComplexPattern(st.Body.Body)
	case *ast.LoopStmt:
		return stmtHasComplexPattern(st.Body)
	case *ast.TryCatchStmt:
		return true
	case *ast.ThrowStmt:
		return true
	case *ast.MatchStmt:
		return matchStmtHasComplex(st)
	default:
		return exprInStmtHasComplexPattern(stmt)
	}
}

func matchStmtHasComplex(st *ast.MatchStmt) bool {
	if exprHasComplexPattern(st.Subject) {
		return true
	}
	for _, arm := range st.Arms {
		if isComplexPattern(arm.Pattern) {
			return true
		}
		if arm.Guard != nil && exprHasComplexPattern(arm.Guard) {
			return true
		}
		if stmtHasComplexPattern(arm.Body) {
			return true
		}
	}
	return false
}

// exprInStmtHasComplexPattern checks the expression(s) directly carried by
// simple statement kinds (ExprStmt/LetStmt/ReturnStmt) for an embedded
// match expression using a pattern the VM doesn't lower. ThrowStmt is
// handled directly in stmtHasComplexPattern, which never reaches here.
func exprInStmtHasComplexPattern(stmt ast.Stmt) bool {
	switch st := stmt.(type) {
	case *ast.ExprStmt:
		return exprHasComplexPattern(st.Expr)
	case *ast.LetStmt:
		return st.Init != nil && exprHasComplexPattern(st.Init)
	case *ast.ReturnStmt:
		return st.Value != nil && exprHasComplexPattern(st.Value)
	default:
		return false
	}
}

func exprHasComplexPattern(expr ast.Expr) bool {
	switch e := expr.(type) {
	case *ast.MatchExpr:
		if exprHasComplexPattern(e.Subject) {
			return true
		}
		for _, arm := range e.Arms {
			if isComplexPattern(arm.Pattern) {
				return true
			}
			if arm.Guard != nil && exprHasComplexPattern(arm.Guard) {
				return true
			}
			if exprHasComplexPattern(arm.Body) {
				return true
			}
		}
		return false
	case *ast.Binary:
		return exprHasComplexPattern(e.Left) || exprHasComplexPattern(e.Right)
	case *ast.Unary:
		return exprHasComplexPattern(e.Operand)
	case *ast.Grouping:
		return exprHasComplexPattern(e.Expression)
	case *ast.Call:
		if exprHasComplexPattern(e.Callee) {
			return true
		}
		for _, a := range e.Args {
			if exprHasComplexPattern(a) {
				return true
			}
		}
		return false
	case *ast.Member:
		return exprHasComplexPattern(e.Base)
	case *ast.Subscript:
		return exprHasComplexPattern(e.Base) || exprHasComplexPattern(e.Index)
	case *ast.Assign:
		return exprHasComplexPattern(e.Value)
	case *ast.ListLit:
		for _, el := range e.Elements {
			if exprHasComplexPattern(el) {
				return true
			}
		}
		return false
	case *ast.TupleLit:
		for _, el := range e.Elements {
			if exprHasComplexPattern(el) {
				return true
			}
		}
		return false
	case *ast.SetLit:
		for _, el := range e.Elements {
			if exprHasComplexPattern(el) {
				return true
			}
		}
		return false
	case *ast.DictLit:
		for _, entry := range e.Entries {
			if exprHasComplexPattern(entry.Value) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// scanner walks a function body once, collecting every name it declares
// (bound) and every name it reads or assigns (candidates). The difference
// is its free-variable set — intentionally conservative: a name declared
// anywhere in the body (even inside a branch never taken) counts as
// bound for the whole function, trading precision in rare shadowing
// cases for a much simpler single pass.
type scanner struct {
	bound      map[string]bool
	candidates map[string]bool
}

func collectFree(fn *ast.FunctionExpr) map[string]bool {
	s := &scanner{bound: map[string]bool{}, candidates: map[string]bool{}}
	for _, p := range fn.Params {
		s.bound[p.Name] = true
	}
	// fn.Name is deliberately NOT added to bound here (contrast
	// scanFunctionBody below): decideMode needs to see a self-call as a
	// free-variable candidate so it can special-case it explicitly,
	// rather than having it silently vanish before that check ever runs.
	s.scanStmts(fn.Body.Body)
	free := map[string]bool{}
	for name := range s.candidates {
		if !s.bound[name] {
			free[name] = true
		}
	}
	return free
}

func (s *scanner) scanStmts(stmts []ast.Stmt) {
	for _, st := range stmts {
		s.scanStmt(st)
	}
}

func (s *scanner) scanStmt(stmt ast.Stmt) {
	switch st := stmt.(type) {
	case *ast.ExprStmt:
		s.scanExpr(st.Expr)
	case *ast.LetStmt:
		s.bound[st.Name] = true
		if st.Init != nil {
			s.scanExpr(st.Init)
		}
	case *ast.BlockStmt:
		s.scanStmts(st.Body)
	case *ast.IfStmt:
		s.scanExpr(st.Cond)
		s.scanStmt(st.Then)
		if st.Else != nil {
			s.scanStmt(st.Else)
		}
	case *ast.WhileStmt:
		s.scanExpr(st.Cond)
		s.scanStmt(st.Body)
	case *ast.ForStmt:
		s.bound[st.Name] = true
		s.scanExpr(st.Start)
		s.scanExpr(st.End)
		if st.Step != nil {
			s.scanExpr(st.Step)
		}
		s.scanStmts(st.Body.Body)
	case *ast.LoopStmt:
		s.scanStmt(st.Body)
	case *ast.BreakStmt:
	case *ast.FunctionStmt:
		s.bound[st.Fn.Name] = true
		s.scanFunctionBody(st.Fn)
	case *ast.ReturnStmt:
		if st.Value != nil {
			s.scanExpr(st.Value)
		}
	case *ast.ThrowStmt:
		s.scanExpr(st.Value)
	case *ast.TryCatchStmt:
		s.scanStmts(st.Try.Body)
		s.bound[st.CatchName] = true
		s.scanStmts(st.Catch.Body)
	case *ast.MatchStmt:
		s.scanExpr(st.Subject)
		for _, arm := range st.Arms {
			s.scanPattern(arm.Pattern)
			if arm.Guard != nil {
				s.scanExpr(arm.Guard)
			}
			s.scanStmt(arm.Body)
		}
	}
}

func (s *scanner) scanFunctionBody(fn *ast.FunctionExpr) {
	for _, p := range fn.Params {
		s.bound[p.Name] = true
	}
	if fn.Name != "" {
		s.bound[fn.Name] = true
	}
	s.scanStmts(fn.Body.Body)
}

func (s *scanner) scanExpr(expr ast.Expr) {
	switch e := expr.(type) {
	case *ast.Literal:
	case *ast.ListLit:
		for _, el := range e.Elements {
			s.scanExpr(el)
		}
	case *ast.TupleLit:
		for _, el := range e.Elements {
			s.scanExpr(el)
		}
	case *ast.SetLit:
		for _, el := range e.Elements {
			s.scanExpr(el)
		}
	case *ast.DictLit:
		for _, entry := range e.Entries {
			s.scanExpr(entry.Value)
		}
	case *ast.ArrayLit:
		s.scanExpr(e.Size)
	case *ast.Variable:
		s.candidates[e.Name] = true
	case *ast.Binary:
		s.scanExpr(e.Left)
		s.scanExpr(e.Right)
	case *ast.Unary:
		s.scanExpr(e.Operand)
	case *ast.Grouping:
		s.scanExpr(e.Expression)
	case *ast.Call:
		s.scanExpr(e.Callee)
		for _, a := range e.Args {
			s.scanExpr(a)
		}
	case *ast.Member:
		s.scanExpr(e.Base)
	case *ast.Subscript:
		s.scanExpr(e.Base)
		s.scanExpr(e.Index)
	case *ast.FunctionExpr:
		s.scanFunctionBody(e)
	case *ast.Assign:
		if v, ok := e.Target.(*ast.Variable); ok {
			s.candidates[v.Name] = true
		} else {
			s.scanExpr(e.Target)
		}
		s.scanExpr(e.Value)
	case *ast.MatchExpr:
		s.scanExpr(e.Subject)
		for _, arm := range e.Arms {
			s.scanPattern(arm.Pattern)
			if arm.Guard != nil {
				s.scanExpr(arm.Guard)
			}
			s.scanExpr(arm.Body)
		}
	}
}

func (s *scanner) scanPattern(pat ast.Pattern) {
	switch p := pat.(type) {
	case *ast.VariablePattern:
		s.bound[p.Name] = true
	case *ast.ListPattern:
		for _, el := range p.Elements {
			s.scanPattern(el)
		}
	case *ast.TuplePattern:
		for _, el := range p.Elements {
			s.scanPattern(el)
		}
	case *ast.DictPattern:
		for _, entry := range p.Entries {
			s.scanPattern(entry.Pattern)
		}
	case *ast.OrPattern:
		for _, alt := range p.Alternatives {
			s.scanPattern(alt)
		}
	}
}
