package evaluator

import "github.com/lazylang/lazylang/pkg/lazylang/errors"

// mergeObjects implements the single merge algorithm shared by `&` and
// `base { fields }` extension (spec §4.3 "Object merge and extension"):
//
//   - all keys of base are preserved in their original order;
//   - each field in right, in declaration order: a non-patch field
//     overwrites the value at its key wholesale (or is appended if the key
//     is new); a patch field (IsPatch) requires base's value at that key to
//     already be an object, and deep-merges it with the patch payload
//     using these same rules, recursively;
//   - keys only present in right are appended at the end, in right's order.
//
// Every field written from right is IsPatch:false — once merged, a field
// holds a complete resolved value, not a pending delta (SPEC_FULL §9).
// Fields carried over from base keep their flags unchanged.
func mergeObjects(base *Object, right []Field, ec *EvalContext, loc errors.Location) (*Object, *errors.SourceError) {
	result := make([]Field, len(base.Fields))
	copy(result, base.Fields)
	index := make(map[string]int, len(result))
	for i, f := range result {
		index[f.Key] = i
	}

	var err *errors.SourceError
	for _, rf := range right {
		result, index, err = applyField(result, index, rf, ec, loc, true)
		if err != nil {
			return nil, err
		}
	}
	return NewObject(result), nil
}

// buildObjectLiteral folds an object literal's own field list into a
// single resolved field list. It shares applyField's patch-merge logic
// with mergeObjects, but — unlike a `&`/object-extend merge against a real
// base — a patch field with no earlier occurrence in the same literal is
// not an error: `{ user { age: 2 } }` has no base to patch yet, so it must
// still evaluate to an object, one that carries the patch field through
// as-is (IsPatch true, holding its sub-literal value) so a later `&` or
// `base { … }` can apply it (spec §4.3 scenarios 4 & 14; this is what
// lets the right-hand operand of `&` be an ordinary object literal).
// A second occurrence of the same patch key within one literal does have
// an earlier occurrence to deep-merge against, so repeated patch keys in
// a single literal still combine the way repeated non-patch keys do.
func buildObjectLiteral(fields []Field, ec *EvalContext, loc errors.Location) (*Object, *errors.SourceError) {
	var result []Field
	index := map[string]int{}
	var err *errors.SourceError
	for _, f := range fields {
		result, index, err = applyField(result, index, f, ec, loc, false)
		if err != nil {
			return nil, err
		}
	}
	return NewObject(result), nil
}

// applyField folds one field from a merge's right-hand side (or a literal's
// own field list) into result/index. requireBase distinguishes the two
// callers: true (mergeObjects) means a patch field with no existing key is
// a genuine error — there is nothing to patch; false (buildObjectLiteral)
// means it is simply installed, retaining its patch intent.
func applyField(result []Field, index map[string]int, rf Field, ec *EvalContext, loc errors.Location, requireBase bool) ([]Field, map[string]int, *errors.SourceError) {
	if !rf.IsPatch {
		if i, ok := index[rf.Key]; ok {
			result[i] = Field{Key: rf.Key, Value: rf.Value, IsPatch: false}
		} else {
			index[rf.Key] = len(result)
			result = append(result, Field{Key: rf.Key, Value: rf.Value, IsPatch: false})
		}
		return result, index, nil
	}

	i, ok := index[rf.Key]
	if !ok {
		if requireBase {
			return nil, nil, ec.Err.Fail(errors.New(errors.TypeMismatch, loc,
				"cannot patch field "+rf.Key+": no existing value at that key").
				WithPayload(errors.TypeMismatchPayload{Expected: string(KindObject), Found: "missing"}))
		}
		index[rf.Key] = len(result)
		return append(result, rf), index, nil
	}

	baseFieldVal, err := result[i].Value.Force()
	if err != nil {
		return nil, nil, err
	}
	baseSub, ok := baseFieldVal.(*Object)
	if !ok {
		return nil, nil, ec.Err.Fail(errors.New(errors.TypeMismatch, loc,
			"cannot patch field "+rf.Key+": existing value is not an object").
			WithPayload(errors.TypeMismatchPayload{Expected: string(KindObject), Found: string(baseFieldVal.Kind())}))
	}
	patchVal, err := rf.Value.Force()
	if err != nil {
		return nil, nil, err
	}
	patchSub, ok := patchVal.(*Object)
	if !ok {
		return nil, nil, ec.Err.Fail(errors.New(errors.TypeMismatch, loc,
			"cannot patch field "+rf.Key+": patch payload is not an object"))
	}
	merged, serr := mergeObjects(baseSub, patchSub.Fields, ec, loc)
	if serr != nil {
		return nil, nil, serr
	}
	result[i] = Field{Key: rf.Key, Value: ThunkOf(merged), IsPatch: false}
	return result, index, nil
}
