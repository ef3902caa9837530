// Copyright 2018 The go-aurora Authors
// This file is part of the go-aurora library.
//
// The go-aurora library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-aurora library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-aurora library. If not, see <http://www.gnu.org/licenses/>.

package hint

// Kind names a hint implemented natively. Everything else is KindScripted.
type Kind uint8

const (
	KindScripted Kind = iota
	KindAddSegment
	KindVMEnterScope
	KindVMExitScope
	KindMemcpyEnterScope
	KindAssertNN
	KindAssertNotZero
	KindIsNN
	KindDictNew
	KindDefaultDictNew
	KindDictRead
	KindDictWrite
)

// Hint texts as emitted by the Cairo compiler.
const (
	addSegmentCode       = "memory[ap] = segments.add()"
	vmEnterScopeCode     = "vm_enter_scope()"
	vmExitScopeCode      = "vm_exit_scope()"
	memcpyEnterScopeCode = "vm_enter_scope({'n': ids.len})"
	assertNNCode         = "from starkware.cairo.common.math_utils import assert_integer\nassert_integer(ids.a)\nassert 0 <= ids.a % PRIME < range_check_builtin.bound, f'a = {ids.a} is out of range.'"
	assertNotZeroCode    = "from starkware.cairo.common.math_utils import assert_integer\nassert_integer(ids.value)\nassert ids.value % PRIME != 0, f'assert_not_zero failed: {ids.value} = 0.'"
	isNNCode             = "memory[ap] = 0 if 0 <= (ids.a % PRIME) < range_check_builtin.bound else 1"
	dictNewCode          = "if '__dict_manager' not in globals():\n    from starkware.cairo.common.dict import DictManager\n    __dict_manager = DictManager()\n\nmemory[ap] = __dict_manager.new_dict(segments, initial_dict)\ndel initial_dict"
	defaultDictNewCode   = "if '__dict_manager' not in globals():\n    from starkware.cairo.common.dict import DictManager\n    __dict_manager = DictManager()\n\nmemory[ap] = __dict_manager.new_default_dict(segments, ids.default_value)"
	dictReadCode         = "dict_tracker = __dict_manager.get_tracker(ids.dict_ptr)\ndict_tracker.current_ptr += ids.DictAccess.SIZE\nids.value = dict_tracker.data[ids.key]"
	dictWriteCode        = "dict_tracker = __dict_manager.get_tracker(ids.dict_ptr)\ndict_tracker.current_ptr += ids.DictAccess.SIZE\nids.dict_ptr.prev_value = dict_tracker.data[ids.key]\ndict_tracker.data[ids.key] = ids.new_value"
)

var nativeKinds = map[string]Kind{
	addSegmentCode:       KindAddSegment,
	vmEnterScopeCode:     KindVMEnterScope,
	vmExitScopeCode:      KindVMExitScope,
	memcpyEnterScopeCode: KindMemcpyEnterScope,
	assertNNCode:         KindAssertNN,
	assertNotZeroCode:    KindAssertNotZero,
	isNNCode:             KindIsNN,
	dictNewCode:          KindDictNew,
	defaultDictNewCode:   KindDefaultDictNew,
	dictReadCode:         KindDictRead,
	dictWriteCode:        KindDictWrite,
}

var kindNames = [...]string{
	KindScripted:         "scripted",
	KindAddSegment:       "add_segment",
	KindVMEnterScope:     "vm_enter_scope",
	KindVMExitScope:      "vm_exit_scope",
	KindMemcpyEnterScope: "memcpy_enter_scope",
	KindAssertNN:         "assert_nn",
	KindAssertNotZero:    "assert_not_zero",
	KindIsNN:             "is_nn",
	KindDictNew:          "dict_new",
	KindDefaultDictNew:   "default_dict_new",
	KindDictRead:         "dict_read",
	KindDictWrite:        "dict_write",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// KindOf classifies hint code.
func KindOf(code string) Kind {
	if k, ok := nativeKinds[code]; ok {
		return k
	}
	return KindScripted
}
