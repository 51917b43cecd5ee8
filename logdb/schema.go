// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

// amounts are stored as 32-byte big-endian blobs
const transferTableSchema = `
create table if not exists transfer (
	seq integer,
	eventIndex integer,
	time integer,
	sender blob(20),
	recipient blob(20),
	amount blob(32),
	primary key (seq, eventIndex)
);

CREATE INDEX if not exists transferTimeIndex on transfer(time);
CREATE INDEX if not exists senderIndex on transfer(sender);
CREATE INDEX if not exists recipientIndex on transfer(recipient);
`

const approvalTableSchema = `
create table if not exists approval (
	seq integer,
	eventIndex integer,
	time integer,
	owner blob(20),
	spender blob(20),
	amount blob(32),
	primary key (seq, eventIndex)
);

CREATE INDEX if not exists approvalOwnerIndex on approval(owner);
`

const stakeTableSchema = `
create table if not exists stake (
	seq integer,
	eventIndex integer,
	time integer,
	action text,
	staker blob(20),
	amount blob(32),
	reward blob(32),
	position integer,
	stakeholderIndex integer,
	timestamp integer,
	primary key (seq, eventIndex)
);

CREATE INDEX if not exists stakeTimeIndex on stake(time);
CREATE INDEX if not exists stakerIndex on stake(staker);
`
