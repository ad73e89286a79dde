package runtime

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/risor-io/risor/object"

	"github.com/jward/boxify/internal/catalog"
	"github.com/jward/boxify/internal/extract"
	"github.com/jward/boxify/internal/resolve"
)

// Host functions over the ImportMap. Risor cannot hold Go pointers
// directly, so each builtin closes over the map it edits.

func makeAddImportFn(im *resolve.ImportMap) *object.Builtin {
	return object.NewBuiltin("add_import", func(ctx context.Context, args ...object.Object) object.Object {
		pkg, fn, errObj := pairArgs("add_import", args)
		if errObj != nil {
			return errObj
		}
		if pkg == "" || fn == "" {
			return object.Errorf("add_import: package and function must not be empty")
		}
		return object.NewBool(im.Add(pkg, fn))
	})
}

func makeRemoveImportFn(im *resolve.ImportMap) *object.Builtin {
	return object.NewBuiltin("remove_import", func(ctx context.Context, args ...object.Object) object.Object {
		pkg, fn, errObj := pairArgs("remove_import", args)
		if errObj != nil {
			return errObj
		}
		return object.NewBool(im.Remove(pkg, fn))
	})
}

func makeImportedFn(im *resolve.ImportMap) *object.Builtin {
	return object.NewBuiltin("imported", func(ctx context.Context, args ...object.Object) object.Object {
		pkg, fn, errObj := pairArgs("imported", args)
		if errObj != nil {
			return errObj
		}
		return object.NewBool(im.Has(pkg, fn))
	})
}

func makePackagesFn(im *resolve.ImportMap) *object.Builtin {
	return object.NewBuiltin("packages", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 0 {
			return object.NewArgsError("packages", 0, len(args))
		}
		return stringList(im.Packages())
	})
}

func makeFunctionsFn(im *resolve.ImportMap) *object.Builtin {
	return object.NewBuiltin("functions", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("functions", 1, len(args))
		}
		pkg, err := toString(args[0])
		if err != nil {
			return object.Errorf("functions: %v", err)
		}
		return stringList(im.Functions(pkg))
	})
}

func makeImportedFromFn(im *resolve.ImportMap) *object.Builtin {
	return object.NewBuiltin("imported_from", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("imported_from", 1, len(args))
		}
		fn, err := toString(args[0])
		if err != nil {
			return object.Errorf("imported_from: %v", err)
		}
		return stringList(im.PackagesOf(fn))
	})
}

func makeOwnersFn(cat *catalog.Catalog) *object.Builtin {
	return object.NewBuiltin("owners", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("owners", 1, len(args))
		}
		fn, err := toString(args[0])
		if err != nil {
			return object.Errorf("owners: %v", err)
		}
		return stringList(cat.Owners(fn))
	})
}

func makeCalledFn(facts *extract.Facts) *object.Builtin {
	return object.NewBuiltin("called", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("called", 1, len(args))
		}
		fn, err := toString(args[0])
		if err != nil {
			return object.Errorf("called: %v", err)
		}
		return object.NewBool(facts.Called(fn))
	})
}

// --- Conversion helpers ---

func pairArgs(name string, args []object.Object) (string, string, object.Object) {
	if len(args) != 2 {
		return "", "", object.NewArgsError(name, 2, len(args))
	}
	pkg, err := toString(args[0])
	if err != nil {
		return "", "", object.Errorf("%s: package: %v", name, err)
	}
	fn, err := toString(args[1])
	if err != nil {
		return "", "", object.Errorf("%s: function: %v", name, err)
	}
	return pkg, fn, nil
}

func toString(obj object.Object) (string, error) {
	if s, ok := obj.(*object.String); ok {
		return s.Value(), nil
	}
	return "", fmt.Errorf("expected string, got %s", obj.Type())
}

func stringList(values []string) *object.List {
	items := make([]object.Object, len(values))
	for i, v := range values {
		items[i] = object.NewString(v)
	}
	return object.NewList(items)
}

// logObject is exposed to scripts as the log global.
type logObject struct {
	logger *log.Logger
}

func (l *logObject) Info(msg string) {
	l.logger.Info(msg)
}

func (l *logObject) Warn(msg string) {
	l.logger.Warn(msg)
}

func (l *logObject) Error(msg string) {
	l.logger.Error(msg)
}
