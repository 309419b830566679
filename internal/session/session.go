// Package session saves named snapshots of an evaluator environment in a
// bolt file and restores them.
package session

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/boltdb/bolt"

	"computor/internal/ast"
	"computor/internal/evaluator"
	"computor/internal/parser"
)

const Perm = 0o600

var (
	varsBucket  = []byte("vars")
	funcsBucket = []byte("funcs")
)

type Store struct {
	db *bolt.DB
}

type function struct {
	Param string `json:"param"`
	Body  string `json:"body"`
}

func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, Perm, &bolt.Options{Timeout: 3 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening session file %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Save replaces the session called name with the bindings of env. Values
// are stored in their rendered form.
func (s *Store) Save(name string, env *evaluator.Environment) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket([]byte(name)) != nil {
			if err := tx.DeleteBucket([]byte(name)); err != nil {
				return err
			}
		}
		root, err := tx.CreateBucket([]byte(name))
		if err != nil {
			return err
		}
		vb, err := root.CreateBucket(varsBucket)
		if err != nil {
			return err
		}
		fb, err := root.CreateBucket(funcsBucket)
		if err != nil {
			return err
		}

		for _, v := range env.VariableNames() {
			val, _ := env.Get(v)
			if err := vb.Put([]byte(v), []byte(val.String())); err != nil {
				return err
			}
		}
		for _, f := range env.FunctionNames() {
			param, body, _ := evaluator.DescribeFunction(f, env)
			data, err := json.Marshal(function{Param: param, Body: body.String()})
			if err != nil {
				return err
			}
			if err := fb.Put([]byte(f), data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("saving session %s: %w", name, err)
	}
	slog.Debug("session saved", slog.String("name", name))
	return nil
}

// Load restores the session called name into env. Every binding is parsed
// and assigned like user input, on a copy of env that replaces it only when
// all of them succeed. On error env is unchanged.
func (s *Store) Load(name string, env *evaluator.Environment) (vars, funcs int, err error) {
	stored := map[string]string{}
	defs := map[string]function{}

	err = s.db.View(func(tx *bolt.Tx) error {
		root := tx.Bucket([]byte(name))
		if root == nil {
			return fmt.Errorf("no session named %s", name)
		}
		if err := root.Bucket(varsBucket).ForEach(func(k, v []byte) error {
			stored[string(k)] = string(v)
			return nil
		}); err != nil {
			return err
		}
		return root.Bucket(funcsBucket).ForEach(func(k, v []byte) error {
			var f function
			if err := json.Unmarshal(v, &f); err != nil {
				return fmt.Errorf("function %s: %w", k, err)
			}
			defs[string(k)] = f
			return nil
		})
	})
	if err != nil {
		return 0, 0, fmt.Errorf("loading session %s: %w", name, err)
	}

	scratch := env.Clone()
	for v, text := range stored {
		if err := restore(ast.NewVariable(v), text, scratch); err != nil {
			return 0, 0, fmt.Errorf("loading session %s: variable %s: %w", name, v, err)
		}
		vars++
	}
	for f, def := range defs {
		target := ast.NewFunction(f, ast.NewVariable(def.Param))
		if err := restore(target, def.Body, scratch); err != nil {
			return 0, 0, fmt.Errorf("loading session %s: function %s: %w", name, f, err)
		}
		funcs++
	}
	env.Restore(scratch)

	slog.Debug("session loaded",
		slog.String("name", name),
		slog.Int("vars", vars),
		slog.Int("funcs", funcs))
	return vars, funcs, nil
}

func restore(target ast.Expr, text string, env *evaluator.Environment) error {
	value, err := parser.ParseExpr(text)
	if err != nil {
		return err
	}
	_, err = evaluator.Assign(target, value, env)
	return err
}

// List returns the saved session names in key order.
func (s *Store) List() ([]string, error) {
	var names []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.ForEach(func(name []byte, _ *bolt.Bucket) error {
			names = append(names, string(name))
			return nil
		})
	})
	return names, err
}

func (s *Store) Delete(name string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.DeleteBucket([]byte(name))
	})
}

func (s *Store) Close() error {
	return s.db.Close()
}
