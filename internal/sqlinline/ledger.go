package sqlinline

const QLedgerInsert = `--sql 4c76e7e4-91ff-4344-abb0-c769e5a01d30
insert into ledger_entries (id, account_id, kind, amount, balance_after, job_id, note, created_at)
values ($1, $2, $3, $4, $5, nullif($6, ''), $7, $8);
`

const QLedgerByAccount = `--sql e192c46e-c5f3-42e6-934c-bed6d9a9d31b
select id, account_id, kind, amount, balance_after, coalesce(job_id, ''), note, created_at
from ledger_entries
where account_id = $1
order by created_at desc, id desc
limit $2;
`
