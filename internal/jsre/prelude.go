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

package jsre

// Prelude is loaded into the pristine runtime. Hints see Relocatable and
// the typed accessor helpers; the Go side provides memory, __struct and
// the rest per hint.
const Prelude = `
function Relocatable(segment_index, offset) {
	this.segment_index = segment_index;
	this.offset = offset;
}

Relocatable.prototype.add = function(n) {
	var off = this.offset + __toOffset(n);
	if (off < 0) {
		throw new Error("offset underflow: " + this + " + " + n);
	}
	return new Relocatable(this.segment_index, off);
};

Relocatable.prototype.sub = function(other) {
	if (other instanceof Relocatable) {
		if (other.segment_index !== this.segment_index) {
			throw new Error("cannot subtract " + other + " from " + this);
		}
		return this.offset - other.offset;
	}
	return this.add(-__toOffset(other));
};

Relocatable.prototype.equals = function(other) {
	return other instanceof Relocatable &&
		other.segment_index === this.segment_index &&
		other.offset === this.offset;
};

Relocatable.prototype.lt = function(other) {
	if (!(other instanceof Relocatable) || other.segment_index !== this.segment_index) {
		throw new Error("cannot compare " + this + " with " + other);
	}
	return this.offset < other.offset;
};

Relocatable.prototype.toString = function() {
	return this.segment_index + ":" + this.offset;
};

function __isRelocatable(v) {
	return v instanceof Relocatable;
}

function __toOffset(n) {
	var v = Number(n);
	if (isNaN(v) || v % 1 !== 0) {
		throw new Error("invalid offset " + n);
	}
	return v;
}

function __typedValue(type, addr) {
	var st = __struct(type);
	if (st !== undefined) {
		return __makeAccessor(addr, st);
	}
	return __asTyped(type, memory.get(addr));
}

function __asTyped(type, v) {
	if (type.charAt(type.length - 1) === "*" && v instanceof Relocatable) {
		var inner = __struct(type.substring(0, type.length - 1));
		if (inner !== undefined) {
			return __makeAccessor(v, inner);
		}
	}
	return v;
}

function __defineId(ids, name, type, addr, value, err) {
	Object.defineProperty(ids, name, {
		get: function() {
			if (err !== undefined) {
				throw new Error("ids." + name + ": " + err);
			}
			if (addr === undefined) {
				return __asTyped(type, value);
			}
			return __typedValue(type, addr);
		},
		set: function(v) {
			if (addr === undefined) {
				throw new Error("ids." + name + " is not assignable");
			}
			memory.set(addr, v);
		},
		enumerable: true
	});
}

function __makeAccessor(base, st) {
	var obj = new Relocatable(base.segment_index, base.offset);
	obj.address_ = new Relocatable(base.segment_index, base.offset);
	var names = Object.keys(st.members);
	for (var i = 0; i < names.length; i++) {
		(function(name, member) {
			var addr = obj.address_.add(member.offset);
			Object.defineProperty(obj, name, {
				get: function() { return __typedValue(member.cairo_type, addr); },
				set: function(v) { memory.set(addr, v); },
				enumerable: true,
				configurable: true
			});
		})(names[i], st.members[names[i]]);
	}
	return obj;
}

function __globalKeys() {
	return Object.keys((function() { return this; })()).join("\n");
}

// __snapshot records every global by identity. The names in tracked are
// also recorded as JSON so that in-place changes to them show up.
function __snapshot(tracked) {
	var g = (function() { return this; })();
	var snap = {values: {}, json: {}};
	var keys = Object.keys(g);
	for (var i = 0; i < keys.length; i++) {
		snap.values[keys[i]] = g[keys[i]];
	}
	var names = tracked ? tracked.split("\n") : [];
	for (var j = 0; j < names.length; j++) {
		var v = g[names[j]];
		if (v !== null && typeof v === "object") {
			snap.json[names[j]] = __stringify(v);
		}
	}
	return snap;
}

function __stringify(v) {
	try {
		return JSON.stringify(v);
	} catch (e) {
		return undefined;
	}
}

function __changed(snap) {
	var g = (function() { return this; })();
	var out = [];
	var keys = Object.keys(g);
	for (var i = 0; i < keys.length; i++) {
		var k = keys[i];
		if (!snap.values.hasOwnProperty(k) || g[k] !== snap.values[k]) {
			out.push(k);
		} else if (snap.json.hasOwnProperty(k)) {
			var j = __stringify(g[k]);
			if (j === undefined || j !== snap.json[k]) {
				out.push(k);
			}
		}
	}
	return out.join("\n");
}
`
